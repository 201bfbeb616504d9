package pipedrive

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.pipedrive.com/v1"

const pageSize = 100

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
		Provider:     U.PROVIDER_NAME_PIPEDRIVE,
		ObjectKind:   objectKind,
		LinkedUserID: linkedUserID,
		Err:          err,
	}
}

// doJSON performs one call against the pipedrive REST API and validates the
// {success, data} envelope before handing the payload back.
func (c *Client) doJSON(method, path, linkedUserID, objectKind string,
	query url.Values, body interface{}) (map[string]interface{}, int, error) {
	connection, status := c.Connections.GetConnection(linkedUserID, U.PROVIDER_NAME_PIPEDRIVE)
	if status != http.StatusFound {
		return nil, 0, c.upstreamError(model.UpstreamAuth, objectKind, linkedUserID,
			errors.New("no pipedrive connection for linked user"))
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
			objectKind, linkedUserID, errors.Errorf("pipedrive returned status %d", res.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, res.StatusCode, c.upstreamError(model.UpstreamMalformed, objectKind, linkedUserID, err)
	}

	if success, ok := payload["success"].(bool); ok && !success {
		return nil, res.StatusCode, c.upstreamError(model.UpstreamOther, objectKind, linkedUserID,
			errors.New("pipedrive reported an unsuccessful request"))
	}

	return payload, res.StatusCode, nil
}

// pull pages through a pipedrive list endpoint and flattens every data
// object.
func (c *Client) pull(path, linkedUserID, objectKind string) ([]integration.RawRecord, int, error) {
	records := make([]integration.RawRecord, 0)
	lastStatus := http.StatusOK
	start := 0
	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("start", strconv.Itoa(start))

		payload, status, err := c.doJSON(http.MethodGet, path, linkedUserID, objectKind, query, nil)
		if err != nil {
			return nil, status, err
		}

		records = append(records, dataObjects(payload)...)
		lastStatus = status

		nextStart, more := nextPageStart(payload)
		if !more {
			break
		}
		start = nextStart
	}

	return records, lastStatus, nil
}

func flattenData(object map[string]interface{}) integration.RawRecord {
	record := integration.RawRecord{}
	for key, value := range object {
		record[key] = value
	}
	record["id"] = U.GetPropertyValueAsString(object["id"])

	return record
}

func dataObjects(payload map[string]interface{}) []integration.RawRecord {
	data, _ := payload["data"].([]interface{})

	records := make([]integration.RawRecord, 0, len(data))
	for _, entry := range data {
		object, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, flattenData(object))
	}

	return records
}

func dataObject(payload map[string]interface{}) integration.RawRecord {
	object, ok := payload["data"].(map[string]interface{})
	if !ok {
		return integration.RawRecord{}
	}

	return flattenData(object)
}

func nextPageStart(payload map[string]interface{}) (int, bool) {
	additional, ok := payload["additional_data"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	pagination, ok := additional["pagination"].(map[string]interface{})
	if !ok {
		return 0, false
	}

	more, _ := pagination["more_items_in_collection"].(bool)
	if !more {
		return 0, false
	}

	return int(U.GetPropertyValueAsFloat64(pagination["next_start"])), true
}
