package hubspot

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"time"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.hubapi.com"

// Client is the shared transport for all hubspot object kinds. Credentials
// are resolved per call from the connection table, never cached.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	Connections integration.ConnectionSource
}

func NewClient(connections integration.ConnectionSource) *Client {
	return &Client{
		BaseURL:     defaultBaseURL,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		Connections: connections,
	}
}

func (c *Client) upstreamError(kind model.UpstreamErrorKind, objectKind, linkedUserID string, err error) *model.UpstreamError {
	return &model.UpstreamError{
		Kind:         kind,
		Provider:     U.PROVIDER_NAME_HUBSPOT,
		ObjectKind:   objectKind,
		LinkedUserID: linkedUserID,
		Err:          err,
	}
}

func (c *Client) doJSON(method, path, linkedUserID, objectKind string,
	query url.Values, body interface{}) (map[string]interface{}, int, error) {
	connection, status := c.Connections.GetConnection(linkedUserID, U.PROVIDER_NAME_HUBSPOT)
	if status != http.StatusFound {
		return nil, 0, c.upstreamError(model.UpstreamAuth, objectKind, linkedUserID,
			errors.New("no hubspot connection for linked user"))
	}

	requestURL := c.BaseURL + path
	if len(query) > 0 {
		requestURL = requestURL + "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, c.upstreamError(model.UpstreamMalformed, objectKind, linkedUserID, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, requestURL, reader)
	if err != nil {
		return nil, 0, c.upstreamError(model.UpstreamOther, objectKind, linkedUserID, err)
	}
	req.Header.Set("Authorization", "Bearer "+connection.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		kind := model.UpstreamOther
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = model.UpstreamTimeout
		}
		return nil, 0, c.upstreamError(kind, objectKind, linkedUserID, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, res.StatusCode, c.upstreamError(model.UpstreamKindFromStatus(res.StatusCode),
			objectKind, linkedUserID, errors.Errorf("hubspot returned status %d", res.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, res.StatusCode, c.upstreamError(model.UpstreamMalformed, objectKind, linkedUserID, err)
	}

	return payload, res.StatusCode, nil
}

// flattenObject lifts the hubspot properties envelope into a flat record with
// the provider id under "id".
func flattenObject(object map[string]interface{}) integration.RawRecord {
	record := integration.RawRecord{}
	if properties, ok := object["properties"].(map[string]interface{}); ok {
		for key, value := range properties {
			record[key] = value
		}
	}
	record["id"] = U.GetPropertyValueAsString(object["id"])

	return record
}

func resultObjects(payload map[string]interface{}) []integration.RawRecord {
	results, _ := payload["results"].([]interface{})

	records := make([]integration.RawRecord, 0, len(results))
	for _, result := range results {
		object, ok := result.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, flattenObject(object))
	}

	return records
}

func nextPageAfter(payload map[string]interface{}) string {
	paging, ok := payload["paging"].(map[string]interface{})
	if !ok {
		return ""
	}
	next, ok := paging["next"].(map[string]interface{})
	if !ok {
		return ""
	}

	return U.GetPropertyValueAsString(next["after"])
}
