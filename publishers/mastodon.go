package publishers

import (
	"fmt"
	"net/http"
	"strings"

	"EvergreenShareAPI/models"
)

type MastodonPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (m *MastodonPublisher) SetCredentials(creds models.Credentials) {
	m.creds = creds
}

func (m *MastodonPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := m.creds["access_token"]
	instance := strings.TrimRight(m.creds["instance_url"], "/")
	if token == "" || instance == "" {
		return false, fmt.Errorf("missing Mastodon credentials")
	}

	text := payload.Content
	if payload.URL != "" {
		text = text + "\n" + payload.URL
	}

	status, body, err := postJSON(m.client, instance+"/api/v1/statuses",
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"status": text})
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.Mastodon, status, body)
	}
	return true, nil
}
