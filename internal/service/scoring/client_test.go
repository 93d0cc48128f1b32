package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creditbot/internal/model/credit"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Username:     "user",
		Password:     "pass",
	}
}

func sampleReport() credit.Report {
	return credit.Report{
		FirstName:   "Jane",
		LastName:    "Doe",
		Address:     "1 Main St",
		City:        "Springfield",
		State:       "IL",
		ZipCode:     "62704",
		DateOfBirth: "1990-01-01",
	}
}

func TestCheckSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/v1/token":
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode token request: %v", err)
			}
			if req["grant_type"] != "password" || req["client_id"] != "client-id" {
				t.Fatalf("unexpected token request: %v", req)
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
		case "/consumer/credit-report":
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Fatalf("decode report: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"creditScore": 700,
				"riskLevel":   "Low",
				"summary":     "Good",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	result, err := client.Check(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Check err: %v", err)
	}

	if result.CreditScore != 700 || result.RiskLevel != "Low" || result.Summary != "Good" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if _, present := gotBody["ssn"]; !present {
		t.Fatal("ssn must be serialized even when declined")
	}
	if gotBody["ssn"] != nil {
		t.Fatalf("expected null ssn, got %v", gotBody["ssn"])
	}
	if gotBody["firstName"] != "Jane" || gotBody["zipCode"] != "62704" {
		t.Fatalf("unexpected report body: %v", gotBody)
	}
}

func TestCheckMissingCredentials(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})

	_, err := client.Check(context.Background(), sampleReport())
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "authenticate") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Check(context.Background(), sampleReport())
	if err == nil {
		t.Fatal("expected error for rejected credentials")
	}
	if !strings.Contains(err.Error(), "authenticate") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckMalformedReportResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/v1/token" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
			return
		}
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Check(context.Background(), sampleReport())
	if err == nil {
		t.Fatal("expected error for malformed response")
	}
	if !strings.Contains(err.Error(), "invalid response") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBaseURLDefaultsAndTrimsSlash(t *testing.T) {
	if got := (Config{}).baseURL(); got != DefaultBaseURL {
		t.Fatalf("unexpected default base URL: %s", got)
	}
	if got := (Config{BaseURL: "https://example.com/v1/"}).baseURL(); got != "https://example.com/v1" {
		t.Fatalf("trailing slash not trimmed: %s", got)
	}
}
