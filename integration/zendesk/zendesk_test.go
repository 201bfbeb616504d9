package zendesk

import (
	"net/http"
	"testing"

	"mosaic/integration"
	"mosaic/model/model"

	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	remoteID string
	status   int
}

func (s *stubResolver) GetUserRemoteID(id string) (string, int) {
	return s.remoteID, s.status
}

func (s *stubResolver) GetCompanyRemoteID(id string) (string, int) {
	return "", http.StatusNotFound
}

func TestCommentMapperVisibilityRule(t *testing.T) {
	mapper := &CommentMapper{Resolver: &stubResolver{status: http.StatusNotFound}}

	unified, err := mapper.UnifyOne(integration.RawRecord{
		"id":     "31",
		"body":   "escalating to tier 2",
		"public": false,
	}, nil)
	assert.Nil(t, err)
	assert.True(t, unified.IsPrivate)

	unified, err = mapper.UnifyOne(integration.RawRecord{
		"id":     "32",
		"body":   "thanks for reporting",
		"public": true,
	}, nil)
	assert.Nil(t, err)
	assert.False(t, unified.IsPrivate)

	// absent flag reads as a public comment
	unified, err = mapper.UnifyOne(integration.RawRecord{"id": "33", "body": "hello"}, nil)
	assert.Nil(t, err)
	assert.False(t, unified.IsPrivate)

	record, err := mapper.Desunify(&model.UnifiedComment{Body: "internal", IsPrivate: true}, nil)
	assert.Nil(t, err)
	assert.Equal(t, false, record["public"])

	record, err = mapper.Desunify(&model.UnifiedComment{Body: "external", IsPrivate: false}, nil)
	assert.Nil(t, err)
	assert.Equal(t, true, record["public"])
}

func TestCommentMapperAuthorResolution(t *testing.T) {
	mapper := &CommentMapper{Resolver: &stubResolver{remoteID: "88001", status: http.StatusFound}}

	record, err := mapper.Desunify(&model.UnifiedComment{
		Body:     "resolved",
		AuthorID: "3f2b6c1a-canonical",
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, "88001", record["author_id"])

	mapper = &CommentMapper{Resolver: &stubResolver{status: http.StatusNotFound}}
	_, err = mapper.Desunify(&model.UnifiedComment{Body: "resolved", AuthorID: "dangling"}, nil)
	assert.NotNil(t, err)
	assert.True(t, model.IsValidationError(err))
}
