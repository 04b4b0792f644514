package publishers

import (
	"fmt"
	"net/http"

	"EvergreenShareAPI/models"
)

type LinkedInPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (l *LinkedInPublisher) SetCredentials(creds models.Credentials) {
	l.creds = creds
}

func (l *LinkedInPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := l.creds["access_token"]
	authorURN := l.creds["author_urn"]
	if token == "" || authorURN == "" {
		return false, fmt.Errorf("missing LinkedIn credentials")
	}

	media := "NONE"
	shareContent := map[string]interface{}{
		"shareCommentary": map[string]string{"text": payload.Content},
	}
	if payload.URL != "" {
		media = "ARTICLE"
		shareContent["media"] = []map[string]interface{}{
			{"status": "READY", "originalUrl": payload.URL},
		}
	}
	shareContent["shareMediaCategory"] = media

	body := map[string]interface{}{
		"author":         authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	status, respBody, err := postJSON(l.client, "https://api.linkedin.com/v2/ugcPosts",
		map[string]string{
			"Authorization":             "Bearer " + token,
			"X-Restli-Protocol-Version": "2.0.0",
		}, body)
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.LinkedIn, status, respBody)
	}
	return true, nil
}
