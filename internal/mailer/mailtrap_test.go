package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailtrapSendsVerificationEmail(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	m := NewMailtrap(srv.URL, "api-token", "no-reply@mall.local", "Mall")
	require.NoError(t, m.SendVerificationEmail(context.Background(), "a@x.com", "Alice", "123456"))

	assert.Equal(t, "Bearer api-token", auth)
	assert.Equal(t, "no-reply@mall.local", got.From.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "a@x.com", got.To[0].Email)
	assert.Equal(t, "Verify your email", got.Subject)
	assert.Contains(t, got.HTML, "123456")
	assert.Contains(t, got.HTML, "Alice")
}

func TestMailtrapReportsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":["Unauthorized"]}`))
	}))
	defer srv.Close()

	m := NewMailtrap(srv.URL, "bad", "no-reply@mall.local", "Mall")
	err := m.SendResetSuccessEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestResetTemplateEscapesURL(t *testing.T) {
	msg, err := resetMessage("a@x.com", `http://mall.local/reset/abc"><script>`)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}
