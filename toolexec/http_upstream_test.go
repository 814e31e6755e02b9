package toolexec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcpp-dev/mcpp-core/secret"
)

func TestHTTPUpstream_CallDecodesTablePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup_customer" {
			t.Errorf("path = %s, want /lookup_customer", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["id"] != "1" {
			t.Errorf("body = %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"kind": "table",
			"payload": map[string]any{
				"headers": []string{"ID", "Name"},
				"rows":    [][]any{{"1", "Ana"}},
			},
		})
	}))
	defer srv.Close()

	u := NewHTTPUpstream(srv.URL, nil)
	entry, err := u.Call(context.Background(), "lookup_customer", map[string]any{"id": "1"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if entry.Table == nil || len(entry.Table.Headers) != 2 {
		t.Errorf("entry = %+v", entry)
	}
}

func TestHTTPUpstream_CallPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	u := NewHTTPUpstream(srv.URL, nil)
	if _, err := u.Call(context.Background(), "broken", nil); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestHTTPUpstream_CallRejectsUnknownKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"kind": "binary", "payload": nil})
	}))
	defer srv.Close()

	u := NewHTTPUpstream(srv.URL, nil)
	if _, err := u.Call(context.Background(), "weird", nil); err == nil {
		t.Fatal("expected an error for an unrecognized kind")
	}
}

func TestHTTPUpstream_WithAuthHeaderAttachesResolvedValue(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"kind": "text", "payload": "ok"})
	}))
	defer srv.Close()

	t.Setenv("UPSTREAM_TOKEN", "s3cr3t")

	u, err := NewHTTPUpstream(srv.URL, nil).
		WithAuthHeader(context.Background(), secret.NewResolver(true), "Bearer ${UPSTREAM_TOKEN}")
	if err != nil {
		t.Fatalf("WithAuthHeader: %v", err)
	}
	if _, err := u.Call(context.Background(), "anything", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotAuth != "Bearer s3cr3t" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer s3cr3t")
	}
}

func TestHTTPUpstream_WithAuthHeaderBlankRefIsNoop(t *testing.T) {
	u, err := NewHTTPUpstream("http://example.invalid", nil).
		WithAuthHeader(context.Background(), secret.NewResolver(true), "")
	if err != nil {
		t.Fatalf("WithAuthHeader: %v", err)
	}
	if u.authHeader != "" {
		t.Errorf("authHeader = %q, want empty", u.authHeader)
	}
}
