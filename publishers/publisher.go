package publishers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"EvergreenShareAPI/models"
)

// ServicePublisher is the capability every network adapter implements.
// SetCredentials must be called before Share; credentials are the opaque
// bundle owned by the account registry.
type ServicePublisher interface {
	SetCredentials(creds models.Credentials)
	Share(payload *models.SharePayload, account *models.Account) (bool, error)
}

// Factory builds a publisher for a service-type tag. New networks register
// here without the dispatcher changing.
type Factory struct {
	client *http.Client
}

func NewFactory() *Factory {
	return &Factory{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *Factory) Build(service models.ServiceType) (ServicePublisher, error) {
	switch service {
	case models.Twitter:
		return &TwitterPublisher{client: f.client}, nil
	case models.Facebook:
		return &FacebookPublisher{client: f.client}, nil
	case models.LinkedIn:
		return &LinkedInPublisher{client: f.client}, nil
	case models.Pinterest:
		return &PinterestPublisher{client: f.client}, nil
	case models.Mastodon:
		return &MastodonPublisher{client: f.client}, nil
	case models.Tumblr:
		return &TumblrPublisher{client: f.client}, nil
	case models.GoogleBusiness:
		return &GoogleBusinessPublisher{client: f.client}, nil
	case models.VK:
		return &VKPublisher{client: f.client}, nil
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}
}

func postJSON(client *http.Client, endpoint string, headers map[string]string, body interface{}) (int, []byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, nil
}

func postForm(client *http.Client, endpoint string, values url.Values) (int, []byte, error) {
	resp, err := client.PostForm(endpoint, values)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, nil
}

func apiError(service models.ServiceType, status int, body []byte) error {
	msg := string(body)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return fmt.Errorf("%s API returned %d: %s", service, status, msg)
}
