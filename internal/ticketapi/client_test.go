package ticketapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happylink/internal/errs"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Hello world", Sanitize(`<Hello> 'world";`))
	assert.Equal(t, "Нет интернета", Sanitize("Нет интернета"))
}

func TestNewRequest(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 5, 9, 0, time.UTC)
	req := NewRequest(42, 10, "+380501234567", "Нет <связи>", now)

	assert.Equal(t, int64(42), req.AgreementID)
	assert.Equal(t, 10, req.ReasonID)
	assert.Equal(t, "18.10.2026 14:05:09", req.DestinationTime)
	assert.Equal(t, "\nНет связи", req.Comment)
}

func TestClient_CreateTicket(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Auth-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":123}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 5*time.Second)
	req := NewRequest(42, 10, "0501234567", "help", time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))

	body, err := c.CreateTicket(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"id":123}`, body)

	assert.Equal(t, float64(42), got["agreement_id"])
	assert.Equal(t, float64(10), got["reason_id"])
	assert.Equal(t, "0501234567", got["phone"])
	assert.Equal(t, "18.10.2026 09:00:00", got["destination_time"])
	assert.Equal(t, "\nhelp", got["comment"])
}

func TestClient_CreateTicket_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong", 5*time.Second)
	_, err := c.CreateTicket(context.Background(), Request{})

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindTransport))
	assert.Contains(t, err.Error(), "403")
}

func TestClient_CreateTicket_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "k", time.Second).CreateTicket(context.Background(), Request{})
	assert.True(t, errs.IsKind(err, errs.KindTransport))
}
