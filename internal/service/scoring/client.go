package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"creditbot/internal/model/credit"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://api.experian.com/credit-risk/v1"

const (
	tokenTimeout  = 10 * time.Second
	reportTimeout = 30 * time.Second
)

// Config carries the credentials and endpoint for the credit-risk API.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Complete reports whether every required credential is present.
func (c Config) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != ""
}

func (c Config) baseURL() string {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

// Client talks to the external credit-risk API. Each check is a single
// attempt: acquire a bearer token, submit the report, surface any failure
// as an opaque message.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a scoring client from the supplied configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: reportTimeout},
	}
}

type tokenRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// token authenticates against the API's password-grant endpoint.
func (c *Client) token(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()

	payload := tokenRequest{
		Username:     c.cfg.Username,
		Password:     c.cfg.Password,
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		GrantType:    "password",
	}

	var token tokenResponse
	if err := c.postJSON(ctx, c.cfg.baseURL()+"/oauth2/v1/token", "", payload, &token); err != nil {
		log.Printf("[scoring] token request failed: %v", err)
		return "", fmt.Errorf("failed to authenticate with Experian API")
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("failed to authenticate with Experian API")
	}
	return token.AccessToken, nil
}

// Check submits one completed report. The returned error message, if any,
// is shown to the user verbatim.
func (c *Client) Check(ctx context.Context, report credit.Report) (credit.Result, error) {
	if !c.cfg.Complete() {
		log.Printf("[scoring] credit API credentials are not fully configured")
		return credit.Result{}, fmt.Errorf("failed to authenticate with Experian API")
	}

	token, err := c.token(ctx)
	if err != nil {
		return credit.Result{}, err
	}

	var result credit.Result
	if err := c.postJSON(ctx, c.cfg.baseURL()+"/consumer/credit-report", token, report, &result); err != nil {
		log.Printf("[scoring] credit report request failed: %v", err)
		return credit.Result{}, err
	}
	return result, nil
}

// postJSON performs one JSON round-trip. A non-empty token is attached as a
// bearer credential.
func (c *Client) postJSON(ctx context.Context, url, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("network or API communication error: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("network or API communication error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network or API communication error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("network or API communication error: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from Experian API")
	}
	return nil
}
