package billing

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salvage_search/internal/config"
)

func testClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config.BillingConfig{
		BaseURL: baseURL,
		APIKey:  "sk_test_abc",
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:    1,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     time.Millisecond,
		},
	}, logger)
}

func TestHasActiveSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/cus_123/subscriptions", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"data":[{"id":"sub_1","status":"active"}]}`))
	}))
	defer srv.Close()

	active, err := testClient(srv.URL).HasActiveSubscription(context.Background(), "cus_123")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestHasActiveSubscription_NoneActive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"sub_1","status":"canceled"}]}`))
	}))
	defer srv.Close()

	active, err := testClient(srv.URL).HasActiveSubscription(context.Background(), "cus_123")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHasActiveSubscription_EmptyCustomerIDNeverCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected for an empty customer id")
	}))
	defer srv.Close()

	active, err := testClient(srv.URL).HasActiveSubscription(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHasActiveSubscription_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).HasActiveSubscription(context.Background(), "cus_123")
	assert.ErrorContains(t, err, "query subscriptions")
}
