package webhooks

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"mosaic/model/model"

	log "github.com/sirupsen/logrus"
)

// EndpointSource lists the active webhook endpoints of a tenant. Satisfied
// by the store.
type EndpointSource interface {
	GetActiveWebhookEndpoints(linkedUserID string) ([]model.WebhookEndpoint, int)
}

// Event is the payload posted to tenant endpoints after a sync or direct
// write lands.
type Event struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	LinkedUserID string      `json:"linked_user_id"`
	Data         interface{} `json:"data"`
}

func DropWebhook(url, secret string, payload interface{}) (map[string]interface{}, error) {
	if url == "" || !IsUrl(url) {
		return nil, fmt.Errorf("invalid url")
	}
	if payload == nil {
		return nil, fmt.Errorf("no payload to drop")
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	request.Header.Set("Content-Type", "application/json; charset=utf-8")
	if secret != "" {
		h := sha256.New()
		h.Write([]byte(secret))
		request.Header.Add("mosaic-secret-256", base64.StdEncoding.EncodeToString(h.Sum(nil)))
	}

	client := &http.Client{}
	resp, err := client.Do(request)
	if err != nil {
		log.WithError(err).Error("failed to make request for webhook")
		return nil, err
	}
	defer resp.Body.Close()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	response := make(map[string]interface{})
	if resp.StatusCode == 201 || resp.StatusCode == 200 {
		response["status"] = "ok"
	} else {
		response["error"] = string(bodyBytes)
		response["statuscode"] = resp.StatusCode
	}
	return response, nil
}

func IsUrl(str string) bool {
	u, err := url.Parse(str)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Notify fans an event out to every active endpoint of the tenant. Delivery
// is fire and forget; a failed drop is logged and never retried here.
func Notify(endpoints EndpointSource, eventID, eventType, linkedUserID string, data interface{}) {
	active, status := endpoints.GetActiveWebhookEndpoints(linkedUserID)
	if status != http.StatusFound || len(active) == 0 {
		return
	}

	event := &Event{
		ID:           eventID,
		Type:         eventType,
		LinkedUserID: linkedUserID,
		Data:         data,
	}

	for i := range active {
		endpoint := active[i]
		go func() {
			if _, err := DropWebhook(endpoint.URL, endpoint.Secret, event); err != nil {
				log.WithFields(log.Fields{
					"endpoint_id":    endpoint.ID,
					"linked_user_id": linkedUserID,
					"event_type":     eventType,
				}).WithError(err).Error("Failed to deliver webhook event.")
			}
		}()
	}
}
