package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("q") != "Ahvaz" || query.Get("appid") != "key" || query.Get("units") != "metric" {
			t.Errorf("unexpected query %v", query)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Ahvaz","weather":[{"description":"clear sky"}],"main":{"temp":41.5}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "key", "Ahvaz", "metric")
	report, err := client.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if report.City != "Ahvaz" || report.Description != "clear sky" || report.Temp != 41.5 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestHTTPClientRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "bad", "Ahvaz", "metric")
	if _, err := client.Current(context.Background()); err == nil {
		t.Fatalf("expected error on 401 response")
	}
}

func TestHTTPClientRejectsEmptyConditions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Ahvaz","weather":[],"main":{"temp":41.5}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "key", "Ahvaz", "metric")
	if _, err := client.Current(context.Background()); err == nil {
		t.Fatalf("expected error when conditions are missing")
	}
}
