package publishers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"EvergreenShareAPI/models"
)

type VKPublisher struct {
	client *http.Client
	creds  models.Credentials
}

func (v *VKPublisher) SetCredentials(creds models.Credentials) {
	v.creds = creds
}

func (v *VKPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	token := v.creds["access_token"]
	ownerID := v.creds["owner_id"]
	if token == "" || ownerID == "" {
		return false, fmt.Errorf("missing VK credentials")
	}

	values := url.Values{}
	values.Set("owner_id", ownerID)
	values.Set("message", payload.Content)
	values.Set("access_token", token)
	values.Set("v", "5.131")
	if payload.URL != "" {
		values.Set("attachments", payload.URL)
	}

	status, body, err := postForm(v.client, "https://api.vk.com/method/wall.post", values)
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, apiError(models.VK, status, body)
	}

	// VK reports errors with HTTP 200 and an error object in the body.
	var vkResp struct {
		Error *struct {
			Code    int    `json:"error_code"`
			Message string `json:"error_msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &vkResp); err == nil && vkResp.Error != nil {
		return false, fmt.Errorf("vk API error %d: %s", vkResp.Error.Code, vkResp.Error.Message)
	}
	return true, nil
}
