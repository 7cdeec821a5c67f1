package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardRelaysBodyVerbatim(t *testing.T) {
	client, obs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"query":"{ allCourses { id } }"}`, string(body))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
	}))

	out, err := client.Forward(context.Background(), json.RawMessage(`{"query":"{ allCourses { id } }"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[{"message":"bad"}]}`, string(out))
	assert.Equal(t, []recordedCall{{kind: "", op: OpForward, outcome: "ok"}}, obs.calls)
}

func TestForwardRejectsNonJSON(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))

	_, err := client.Forward(context.Background(), json.RawMessage(`{}`))
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, OpForward, gwErr.Op)
}

func TestForwardTransportFailure(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1"}, nil, nil, nil)
	_, err := client.Forward(context.Background(), json.RawMessage(`{}`))
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.True(t, gwErr.Transport())
}
