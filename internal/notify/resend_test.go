package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResendSend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("missing bearer key, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	sender, err := NewResend("re_test", "").WithBaseURL(srv.URL)
	if err != nil {
		t.Fatalf("base url: %v", err)
	}
	if err := sender.Send(context.Background(), "alice@x.com", "Hi", "<p>hi</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["from"] != DefaultFrom || got["subject"] != "Hi" || got["html"] != "<p>hi</p>" {
		t.Fatalf("unexpected payload %+v", got)
	}
	to, _ := got["to"].([]interface{})
	if len(to) != 1 || to[0] != "alice@x.com" {
		t.Fatalf("unexpected recipients %+v", got["to"])
	}
}

func TestResendSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad from"}`))
	}))
	defer srv.Close()

	sender, _ := NewResend("re_test", "me@x.com").WithBaseURL(srv.URL)
	if err := sender.Send(context.Background(), "alice@x.com", "Hi", "x"); err == nil {
		t.Fatalf("expected provider error")
	}
}
