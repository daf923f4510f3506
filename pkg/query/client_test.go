package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aish-cli/aish/pkg/credential"
	"github.com/aish-cli/aish/pkg/models"
)

func staticKey(key string) CredentialFunc {
	return func() (string, error) { return key, nil }
}

func newTestClient(t *testing.T, handler http.HandlerFunc, diag io.Writer) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, DefaultModel, staticKey("xai-test"), WithDiagnostics(diag))
}

func TestSendBuildsRequest(t *testing.T) {
	var got models.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer xai-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"kubectl get pods"}}]}`)
	}, io.Discard)

	answer, err := c.Send(context.Background(), "be terse", "list pods")
	require.NoError(t, err)
	assert.Equal(t, "kubectl get pods", answer)

	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, models.ChatMessage{Role: "system", Content: "be terse"}, got.Messages[0])
	assert.Equal(t, models.ChatMessage{Role: "user", Content: "list pods"}, got.Messages[1])
}

func TestSendConcatenatesChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "kubectl"}},
				{"index": 1, "message": {"role": "assistant", "content": " get pods"}}
			]
		}`)
	}, io.Discard)

	answer, err := c.Send(context.Background(), "p", "q")
	require.NoError(t, err)
	assert.Equal(t, "kubectl get pods", answer)
}

func TestSendEmptyAnswer(t *testing.T) {
	tests := map[string]string{
		"no choices":    `{"choices":[]}`,
		"empty content": `{"choices":[{"message":{"content":""}}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}, io.Discard)

			_, err := c.Send(context.Background(), "p", "q")
			assert.ErrorIs(t, err, ErrEmptyAnswer)
		})
	}
}

func TestSendMalformedResponse(t *testing.T) {
	tests := map[string]string{
		"not json":        `<html>oops</html>`,
		"missing choices": `{"id":"x"}`,
		"null choices":    `{"choices":null}`,
		"missing message": `{"choices":[{"index":0}]}`,
		"missing content": `{"choices":[{"message":{"role":"assistant"}}]}`,
		"null content":    `{"choices":[{"message":{"content":null}}]}`,
		"wrong type":      `{"choices":[{"message":{"content":42}}]}`,
		"null choice":     `{"choices":[null]}`,
		"choices casing":  `{"Choices":[{"message":{"content":"ls"}}]}`,
		"message casing":  `{"choices":[{"Message":{"content":"ls"}}]}`,
		"content casing":  `{"choices":[{"message":{"CONTENT":"ls"}}]}`,
		"invalid utf8":    "{\"choices\":[{\"message\":{\"content\":\"ls \xff\"}}]}",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}, io.Discard)

			_, err := c.Send(context.Background(), "p", "q")
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.NotErrorIs(t, err, ErrEmptyAnswer)
		})
	}
}

func TestSendNon2xx(t *testing.T) {
	var diag bytes.Buffer
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"bad key"}`)
	}, &diag)

	_, err := c.Send(context.Background(), "p", "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, http.StatusUnauthorized, qerr.StatusCode)
	assert.Equal(t, "{\"error\":\"bad key\"}\n", diag.String())
}

func TestSendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, DefaultModel, staticKey("k"), WithDiagnostics(io.Discard))
	_, err := c.Send(context.Background(), "p", "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Zero(t, qerr.StatusCode)
}

func TestSendCredentialFailure(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cred := func() (string, error) {
		return credential.ResolveWith(func(string) (string, bool) { return "", false }, credential.DefaultEnv)
	}
	c := New(srv.URL, DefaultModel, cred)

	_, err := c.Send(context.Background(), "p", "q")
	assert.ErrorIs(t, err, ErrCredential)
	assert.ErrorIs(t, err, credential.ErrMissing)
	assert.False(t, called, "no request should be sent without a credential")
}
