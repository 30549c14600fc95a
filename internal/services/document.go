package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// noRowsCode is the PostgREST error code for "query returned no rows".
const noRowsCode = "PGRST116"

// DocumentService reads and writes a user's songbook in a PostgREST-compatible document store.
//
// The store keeps one row per username in a table with columns username, state and updated_at.
// Calls are rate limited and safe for concurrent use.
type DocumentService struct {
	baseURL    string
	table      string
	username   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// remoteRow is a row of the document table.
type remoteRow struct {
	Username  string          `json:"username,omitempty"`
	State     json.RawMessage `json:"state"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// remoteError is the error body returned by PostgREST.
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewDocumentService creates a client for the store described by cfg.
//
// Every request carries the API key both as the apikey header and as a bearer token.
// A nil client uses a fresh [http.Client] with cfg's timeout.
func NewDocumentService(cfg shared.RemoteConfig, client *http.Client) (*DocumentService, error) {
	if cfg.URL == "" || cfg.APIKey == "" || cfg.Username == "" {
		return nil, fmt.Errorf("%w: remote url, api key and username are required", shared.ErrMissingCredentials)
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: remote url: %v", shared.ErrInvalidConfig, err)
	}

	table := cfg.Table
	if table == "" {
		table = "songbooks"
	}

	base := http.DefaultTransport
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if client != nil {
		if client.Transport != nil {
			base = client.Transport
		}
		if client.Timeout > 0 {
			timeout = client.Timeout
		}
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: src,
			Base:   &apiKeyTransport{key: cfg.APIKey, base: base},
		},
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &DocumentService{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		table:      table,
		username:   cfg.Username,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// Username returns the key the songbook is stored under.
func (s *DocumentService) Username() string { return s.username }

// Fetch loads the user's songbook. A user without a stored document gets an empty songbook.
func (s *DocumentService) Fetch(ctx context.Context) (*models.Songbook, error) {
	q := url.Values{}
	q.Set("select", "state")
	q.Set("username", "eq."+s.username)

	resp, err := s.do(ctx, http.MethodGet, s.endpoint(q), nil, nil)
	if err != nil {
		return nil, err
	}

	if resp.status < 200 || resp.status >= 300 {
		remoteErr := decodeRemoteError(resp.body)
		if remoteErr.Code == noRowsCode {
			empty := models.NewSongbook(nil)
			return &empty, nil
		}
		return nil, fmt.Errorf("%w: fetch returned %d: %s", shared.ErrAPIRequest, resp.status, remoteErr.Message)
	}

	var rows []remoteRow
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to decode document: %v", shared.ErrAPIRequest, err)
	}

	book := models.NewSongbook(nil)
	if len(rows) == 0 || len(rows[0].State) == 0 || string(rows[0].State) == "null" {
		return &book, nil
	}

	if err := json.Unmarshal(rows[0].State, &book); err != nil {
		return nil, fmt.Errorf("%w: failed to decode songbook state: %v", shared.ErrAPIRequest, err)
	}
	if book.Songs == nil {
		book.Songs = []models.SongRecord{}
	}
	return &book, nil
}

// Store replaces the user's songbook with book, creating the row when needed.
func (s *DocumentService) Store(ctx context.Context, book *models.Songbook) error {
	state, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to encode songbook: %w", err)
	}

	payload, err := json.Marshal([]remoteRow{{
		Username:  s.username,
		State:     state,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}})
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	q := url.Values{}
	q.Set("on_conflict", "username")
	headers := map[string]string{
		"Content-Type": "application/json",
		"Prefer":       "resolution=merge-duplicates,return=minimal",
	}

	resp, err := s.do(ctx, http.MethodPost, s.endpoint(q), payload, headers)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status >= 300 {
		remoteErr := decodeRemoteError(resp.body)
		return fmt.Errorf("%w: store returned %d: %s", shared.ErrAPIRequest, resp.status, remoteErr.Message)
	}
	return nil
}

// Ping verifies connectivity and credentials by fetching the user's document.
func (s *DocumentService) Ping(ctx context.Context) error {
	_, err := s.Fetch(ctx)
	return err
}

func (s *DocumentService) endpoint(q url.Values) string {
	return s.baseURL + "/rest/v1/" + url.PathEscape(s.table) + "?" + q.Encode()
}

type rawResponse struct {
	status int
	body   []byte
}

func (s *DocumentService) do(ctx context.Context, method, target string, body []byte, headers map[string]string) (*rawResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

func decodeRemoteError(body []byte) remoteError {
	var e remoteError
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}

// apiKeyTransport adds the apikey header expected by the store's gateway.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("apikey", t.key)
	return t.base.RoundTrip(r)
}
