package publishers

import (
	"fmt"
	"net/http"

	"EvergreenShareAPI/models"
)

type TwitterPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (t *TwitterPublisher) SetCredentials(creds models.Credentials) {
	t.creds = creds
}

func (t *TwitterPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := t.creds["access_token"]
	if token == "" {
		return false, fmt.Errorf("missing Twitter credentials")
	}

	text := payload.Content
	if payload.URL != "" {
		text = text + " " + payload.URL
	}

	status, body, err := postJSON(t.client, "https://api.twitter.com/2/tweets",
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"text": text})
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.Twitter, status, body)
	}
	return true, nil
}
