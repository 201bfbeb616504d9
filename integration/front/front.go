package front

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api2.frontapp.com"

const commentsPath = "/comments"

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

func (c *Client) upstreamError(kind model.UpstreamErrorKind, linkedUserID string, err error) *model.UpstreamError {
	return &model.UpstreamError{
		Kind:         kind,
		Provider:     U.PROVIDER_NAME_FRONT,
		ObjectKind:   U.OBJECT_KIND_COMMENT,
		LinkedUserID: linkedUserID,
		Err:          err,
	}
}

func (c *Client) doJSON(method, requestURL, linkedUserID string,
	body interface{}) (map[string]interface{}, int, error) {
	connection, status := c.Connections.GetConnection(linkedUserID, U.PROVIDER_NAME_FRONT)
	if status != http.StatusFound {
		return nil, 0, c.upstreamError(model.UpstreamAuth, linkedUserID,
			errors.New("no front connection for linked user"))
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, c.upstreamError(model.UpstreamMalformed, linkedUserID, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, requestURL, reader)
	if err != nil {
		return nil, 0, c.upstreamError(model.UpstreamOther, linkedUserID, err)
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
		return nil, 0, c.upstreamError(kind, linkedUserID, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, res.StatusCode, c.upstreamError(model.UpstreamKindFromStatus(res.StatusCode),
			linkedUserID, errors.Errorf("front returned status %d", res.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, res.StatusCode, c.upstreamError(model.UpstreamMalformed, linkedUserID, err)
	}

	return payload, res.StatusCode, nil
}

// flattenComment keeps the front comment flat and coerces the id to a
// string. The nested author object is reduced to its id so mappers see a
// scalar.
func flattenComment(object map[string]interface{}) integration.RawRecord {
	record := integration.RawRecord{}
	for key, value := range object {
		record[key] = value
	}
	record["id"] = U.GetPropertyValueAsString(object["id"])

	if author, ok := object["author"].(map[string]interface{}); ok {
		record["author_id"] = U.GetPropertyValueAsString(author["id"])
		delete(record, "author")
	}

	return record
}

type CommentAdapter struct {
	Client *Client
}

func (a *CommentAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	payload, status, err := a.Client.doJSON(http.MethodPost,
		a.Client.BaseURL+commentsPath, linkedUserID, record)
	if err != nil {
		return nil, err
	}

	return &integration.Response{Data: flattenComment(payload), StatusCode: status}, nil
}

func (a *CommentAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	records := make([]integration.RawRecord, 0)
	lastStatus := http.StatusOK
	requestURL := a.Client.BaseURL + commentsPath
	for requestURL != "" {
		payload, status, err := a.Client.doJSON(http.MethodGet, requestURL, linkedUserID, nil)
		if err != nil {
			return nil, err
		}

		results, _ := payload["_results"].([]interface{})
		for _, entry := range results {
			object, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			records = append(records, flattenComment(object))
		}
		lastStatus = status

		requestURL = ""
		if pagination, ok := payload["_pagination"].(map[string]interface{}); ok {
			requestURL = U.GetPropertyValueAsString(pagination["next"])
		}
	}

	return &integration.ListResponse{Data: records, StatusCode: lastStatus}, nil
}

// CommentMapper applies the fixed visibility rule for front: every front
// comment is an internal discussion entry, so is_private is always true on
// the way in and the flag is never sent on the way out.
type CommentMapper struct {
	Resolver integration.RemoteIDResolver
}

func (m *CommentMapper) Desunify(source *model.UnifiedComment, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "comment", Reason: "nil unified comment"}
	}

	record := integration.RawRecord{}
	if source.Body != "" {
		record["body"] = source.Body
	}
	if source.AuthorID != "" {
		remoteID, status := m.Resolver.GetUserRemoteID(source.AuthorID)
		if status != http.StatusFound {
			return nil, &model.ValidationError{
				Field: "author_id", Reason: "unknown canonical user reference"}
		}
		record["author_id"] = remoteID
	}

	integration.ApplyDesunifyMappings(record, source.FieldMappings, mappings)
	return record, nil
}

func (m *CommentMapper) UnifyOne(record integration.RawRecord, mappings []model.Attribute) (*model.UnifiedComment, error) {
	unified := &model.UnifiedComment{
		Body:      U.GetPropertyValueAsString(record["body"]),
		IsPrivate: true,
	}
	unified.FieldMappings = integration.ApplyCustomFieldMappings(record, mappings)

	return unified, nil
}

func (m *CommentMapper) Unify(records []integration.RawRecord, mappings []model.Attribute) ([]model.UnifiedComment, error) {
	unified := make([]model.UnifiedComment, 0, len(records))
	for i := range records {
		one, err := m.UnifyOne(records[i], mappings)
		if err != nil {
			return nil, err
		}
		unified = append(unified, *one)
	}

	return unified, nil
}
