package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphqlProxyMock struct {
	body    json.RawMessage
	err     error
	payload json.RawMessage
}

func (m *graphqlProxyMock) Forward(_ context.Context, payload json.RawMessage) (json.RawMessage, error) {
	m.payload = payload
	return m.body, m.err
}

func TestGraphQLHandlerRelays(t *testing.T) {
	mock := &graphqlProxyMock{body: json.RawMessage(`{"errors":[{"message":"x"}]}`)}
	h := NewGraphQLHandler(mock)

	c, w := newTestContext(http.MethodPost, "/api/graphql", `{"query":"{ allCourses { id } }"}`)
	h.Proxy(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"errors":[{"message":"x"}]}`, w.Body.String())
	assert.JSONEq(t, `{"query":"{ allCourses { id } }"}`, string(mock.payload))
}

func TestGraphQLHandlerUpstreamFailure(t *testing.T) {
	h := NewGraphQLHandler(&graphqlProxyMock{err: errors.New("refused")})

	c, w := newTestContext(http.MethodPost, "/api/graphql", `{"query":"{ a }"}`)
	h.Proxy(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error proxying to GraphQL"}`, w.Body.String())
}

func TestGraphQLHandlerInvalidBody(t *testing.T) {
	mock := &graphqlProxyMock{}
	h := NewGraphQLHandler(mock)

	c, w := newTestContext(http.MethodPost, "/api/graphql", `{"query":`)
	h.Proxy(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, mock.payload)
}
