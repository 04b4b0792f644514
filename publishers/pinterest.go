package publishers

import (
	"fmt"
	"net/http"

	"EvergreenShareAPI/models"
)

type PinterestPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (p *PinterestPublisher) SetCredentials(creds models.Credentials) {
	p.creds = creds
}

func (p *PinterestPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := p.creds["access_token"]
	boardID := p.creds["board_id"]
	if token == "" || boardID == "" {
		return false, fmt.Errorf("missing Pinterest credentials")
	}

	// Pinterest pins require an image; posts without media cannot be pinned.
	if payload.MediaPath == "" {
		return false, fmt.Errorf("pinterest requires a media attachment")
	}

	body := map[string]interface{}{
		"board_id":    boardID,
		"description": payload.Content,
		"link":        payload.URL,
		"media_source": map[string]string{
			"source_type": "image_url",
			"url":         payload.MediaPath,
		},
	}

	status, respBody, err := postJSON(p.client, "https://api.pinterest.com/v5/pins",
		map[string]string{"Authorization": "Bearer " + token}, body)
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.Pinterest, status, respBody)
	}
	return true, nil
}
