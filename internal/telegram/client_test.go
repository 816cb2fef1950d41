package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spiffcs/repowatch/config"
)

const (
	testToken  = "123456:ABC-secret"
	testChatID = "-1001234"
)

func TestNewMissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		chatID  string
		wantErr bool
	}{
		{"both set", testToken, testChatID, false},
		{"missing token", "", testChatID, true},
		{"missing chat id", testToken, "", true},
		{"missing both", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.token, tt.chatID)
			if tt.wantErr {
				if !errors.Is(err, config.ErrInvalid) {
					t.Errorf("New() error = %v, want config.ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Errorf("New() error = %v", err)
			}
		})
	}
}

func TestSend(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write([]byte(`{"ok":true,"result":{"message_id":42}}`))
	}))
	defer srv.Close()

	client, err := New(testToken, testChatID, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	text := "🚨 *GitHub Alert – Too many open issues*\nRepo: `acme/widgets`"
	if err := client.Send(context.Background(), text); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if want := "/bot" + testToken + "/sendMessage"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody.ChatID != testChatID {
		t.Errorf("chat_id = %q, want %q", gotBody.ChatID, testChatID)
	}
	if gotBody.Text != text {
		t.Errorf("text = %q, want %q", gotBody.Text, text)
	}
	if gotBody.ParseMode != "Markdown" {
		t.Errorf("parse_mode = %q, want Markdown", gotBody.ParseMode)
	}
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	client, err := New(testToken, testChatID, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = client.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("Send() error = nil, want API error")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error %q missing status code", err)
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error %q missing API description", err)
	}
}

func TestSendSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := New(testToken, testChatID, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := client.Send(context.Background(), "hello"); err == nil {
		t.Fatal("Send() error = nil, want failure")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry)", n)
	}
}

func TestSendErrorHidesToken(t *testing.T) {
	// A transport-level failure produces a url.Error whose text would
	// include the token-bearing URL. The client must strip it.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client, err := New(testToken, testChatID, WithBaseURL(addr))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = client.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("Send() error = nil, want connection failure")
	}
	if strings.Contains(err.Error(), testToken) {
		t.Errorf("error text leaks bot token: %q", err)
	}
}
