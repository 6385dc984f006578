package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

func newTestClient(url string) *Client {
	return NewClient(&config.Config{LineAccessToken: "tok", LineTargetID: "U123", LineAPIURL: url}, logger.Discard())
}

func TestPushSendsBearerAndTextMessage(t *testing.T) {
	var got pushRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).Push(context.Background(), "สวัสดี"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", auth)
	}
	if got.To != "U123" || len(got.Messages) != 1 || got.Messages[0].Type != "text" || got.Messages[0].Text != "สวัสดี" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestPushReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Invalid reply token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Push(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected 400 error, got %v", err)
	}
}

func TestUnconfiguredClientIsNoop(t *testing.T) {
	c := NewClient(&config.Config{}, logger.Discard())
	if c != nil {
		t.Fatalf("expected nil client without token")
	}
	if err := c.Push(context.Background(), "x"); err != nil {
		t.Fatalf("nil client must be a no-op, got %v", err)
	}
}
