package zendesk

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

const commentsPath = "/api/v2/comments"

// Client talks to a per-tenant zendesk instance. There is no shared base
// URL; every call resolves the instance from the tenant's connection.
type Client struct {
	HTTPClient  *http.Client
	Connections integration.ConnectionSource
}

func NewClient(connections integration.ConnectionSource) *Client {
	return &Client{
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		Connections: connections,
	}
}

func (c *Client) upstreamError(kind model.UpstreamErrorKind, linkedUserID string, err error) *model.UpstreamError {
	return &model.UpstreamError{
		Kind:         kind,
		Provider:     U.PROVIDER_NAME_ZENDESK,
		ObjectKind:   U.OBJECT_KIND_COMMENT,
		LinkedUserID: linkedUserID,
		Err:          err,
	}
}

func (c *Client) doJSON(method, requestURL, linkedUserID, token string,
	body interface{}) (map[string]interface{}, int, error) {
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
	req.Header.Set("Authorization", "Bearer "+token)
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
			linkedUserID, errors.Errorf("zendesk returned status %d", res.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, res.StatusCode, c.upstreamError(model.UpstreamMalformed, linkedUserID, err)
	}

	return payload, res.StatusCode, nil
}

func (c *Client) connection(linkedUserID string) (*model.Connection, error) {
	connection, status := c.Connections.GetConnection(linkedUserID, U.PROVIDER_NAME_ZENDESK)
	if status != http.StatusFound {
		return nil, c.upstreamError(model.UpstreamAuth, linkedUserID,
			errors.New("no zendesk connection for linked user"))
	}
	if connection.InstanceURL == "" {
		return nil, c.upstreamError(model.UpstreamAuth, linkedUserID,
			errors.New("zendesk connection has no instance url"))
	}

	return connection, nil
}

func flattenComment(object map[string]interface{}) integration.RawRecord {
	record := integration.RawRecord{}
	for key, value := range object {
		record[key] = value
	}
	record["id"] = U.GetPropertyValueAsString(object["id"])

	return record
}

type CommentAdapter struct {
	Client *Client
}

func (a *CommentAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	connection, err := a.Client.connection(linkedUserID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{"comment": record}
	response, status, err := a.Client.doJSON(http.MethodPost,
		connection.InstanceURL+commentsPath, linkedUserID, connection.AccessToken, payload)
	if err != nil {
		return nil, err
	}

	object, ok := response["comment"].(map[string]interface{})
	if !ok {
		return nil, a.Client.upstreamError(model.UpstreamMalformed, linkedUserID,
			errors.New("zendesk response has no comment object"))
	}

	return &integration.Response{Data: flattenComment(object), StatusCode: status}, nil
}

func (a *CommentAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	connection, err := a.Client.connection(linkedUserID)
	if err != nil {
		return nil, err
	}

	records := make([]integration.RawRecord, 0)
	lastStatus := http.StatusOK
	requestURL := connection.InstanceURL + commentsPath
	for requestURL != "" {
		payload, status, err := a.Client.doJSON(http.MethodGet, requestURL,
			linkedUserID, connection.AccessToken, nil)
		if err != nil {
			return nil, err
		}

		comments, _ := payload["comments"].([]interface{})
		for _, entry := range comments {
			object, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			records = append(records, flattenComment(object))
		}
		lastStatus = status

		requestURL = U.GetPropertyValueAsString(payload["next_page"])
	}

	return &integration.ListResponse{Data: records, StatusCode: lastStatus}, nil
}

// CommentMapper applies the fixed visibility rule: zendesk exposes a public
// flag, the unified shape an is_private one. The two are strict negations of
// each other in both directions.
type CommentMapper struct {
	Resolver integration.RemoteIDResolver
}

func (m *CommentMapper) Desunify(source *model.UnifiedComment, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "comment", Reason: "nil unified comment"}
	}

	record := integration.RawRecord{
		"public": !source.IsPrivate,
	}
	if source.Body != "" {
		record["body"] = source.Body
	}
	if source.HTMLBody != "" {
		record["html_body"] = source.HTMLBody
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
	public, ok := record["public"].(bool)
	if !ok {
		// absent flag means a public ticket comment
		public = true
	}

	unified := &model.UnifiedComment{
		Body:      U.GetPropertyValueAsString(record["body"]),
		HTMLBody:  U.GetPropertyValueAsString(record["html_body"]),
		IsPrivate: !public,
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
