package publishers

import (
	"fmt"
	"net/http"
	"net/url"

	"EvergreenShareAPI/models"
)

type FacebookPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (f *FacebookPublisher) SetCredentials(creds models.Credentials) {
	f.creds = creds
}

func (f *FacebookPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := f.creds["access_token"]
	pageID := f.creds["page_id"]
	if token == "" || pageID == "" {
		return false, fmt.Errorf("missing Facebook credentials")
	}

	values := url.Values{}
	values.Set("message", payload.Content)
	values.Set("access_token", token)
	if payload.URL != "" {
		values.Set("link", payload.URL)
	}

	endpoint := fmt.Sprintf("https://graph.facebook.com/v18.0/%s/feed", pageID)
	status, body, err := postForm(f.client, endpoint, values)
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.Facebook, status, body)
	}
	return true, nil
}
