package publishers

import (
	"fmt"
	"net/http"

	"EvergreenShareAPI/models"
)

type TumblrPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (t *TumblrPublisher) SetCredentials(creds models.Credentials) {
	t.creds = creds
}

func (t *TumblrPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := t.creds["access_token"]
	blog := t.creds["blog_identifier"]
	if token == "" || blog == "" {
		return false, fmt.Errorf("missing Tumblr credentials")
	}

	content := []map[string]interface{}{
		{"type": "text", "text": payload.Content},
	}
	if payload.URL != "" {
		content = append(content, map[string]interface{}{
			"type": "link", "url": payload.URL,
		})
	}

	endpoint := fmt.Sprintf("https://api.tumblr.com/v2/blog/%s/posts", blog)
	status, body, err := postJSON(t.client, endpoint,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]interface{}{"content": content})
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.Tumblr, status, body)
	}
	return true, nil
}
