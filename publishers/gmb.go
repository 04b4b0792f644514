package publishers

import (
	"fmt"
	"net/http"

	"EvergreenShareAPI/models"
)

// GoogleBusinessPublisher posts to a Google Business Profile location.
// Its access tokens are refreshed by a provider side channel, which is why
// the dispatcher forces an account re-read when a gmb account is queued.
type GoogleBusinessPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (g *GoogleBusinessPublisher) SetCredentials(creds models.Credentials) {
	g.creds = creds
}

func (g *GoogleBusinessPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := g.creds["access_token"]
	location := g.creds["location_name"]
	if token == "" || location == "" {
		return false, fmt.Errorf("missing Google Business credentials")
	}

	body := map[string]interface{}{
		"languageCode": "en-US",
		"summary":      payload.Content,
		"topicType":    "STANDARD",
	}
	if payload.URL != "" {
		body["callToAction"] = map[string]string{
			"actionType": "LEARN_MORE",
			"url":        payload.URL,
		}
	}

	endpoint := fmt.Sprintf("https://mybusiness.googleapis.com/v4/%s/localPosts", location)
	status, respBody, err := postJSON(g.client, endpoint,
		map[string]string{"Authorization": "Bearer " + token}, body)
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.GoogleBusiness, status, respBody)
	}
	return true, nil
}
