package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const restPrefix = "/rest/v1/"

// HTTPStore talks to a PostgREST endpoint such as a Supabase project.
type HTTPStore struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	accessToken string
}

// Option configures an HTTPStore.
type Option func(*HTTPStore)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPStore) { s.httpClient = c }
}

// NewHTTPStore creates a store rooted at baseURL. accessToken falls back to
// apiKey when empty, which is how anonymous PostgREST requests are made.
func NewHTTPStore(baseURL, apiKey, accessToken string, opts ...Option) *HTTPStore {
	if accessToken == "" {
		accessToken = apiKey
	}
	s := &HTTPStore{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert creates a row and returns it with server-assigned fields.
func (s *HTTPStore) Insert(ctx context.Context, collection string, data Record) (Record, error) {
	var rec Record
	if err := s.doRequest(ctx, http.MethodPost, collection, "", data, true, &rec); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return rec, nil
}

// Update applies a partial update to the row with the given id.
func (s *HTTPStore) Update(ctx context.Context, collection, id string, updates Record) (Record, error) {
	var rec Record
	if err := s.doRequest(ctx, http.MethodPatch, collection, id, updates, true, &rec); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// Delete removes the row with the given id. A delete that matched no row
// reports ErrNoRows.
func (s *HTTPStore) Delete(ctx context.Context, collection, id string) error {
	var deleted []Record
	if err := s.doRequest(ctx, http.MethodDelete, collection, id, nil, false, &deleted); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if len(deleted) == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNoRows)
	}
	return nil
}

// Select returns the rows of collection matching q.
func (s *HTTPStore) Select(ctx context.Context, collection string, q Query) ([]Record, error) {
	target := s.baseURL + restPrefix + url.PathEscape(collection) + "?" + q.values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.setAuth(req)
	req.Header.Set("Accept", "application/json")

	var rows []Record
	if err := s.send(req, &rows); err != nil {
		return nil, fmt.Errorf("select from %s: %w", collection, err)
	}
	return rows, nil
}

// Ping issues a GET against the REST root. Any response below 500 means the
// network path is up, even if the credentials are rejected.
func (s *HTTPStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+restPrefix, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.setAuth(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return transportError(req, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Status: resp.StatusCode}
	}
	return nil
}

func (s *HTTPStore) setAuth(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
	}
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}
}

func (s *HTTPStore) doRequest(ctx context.Context, method, collection, id string, body any, single bool, result any) error {
	target := s.baseURL + restPrefix + url.PathEscape(collection)
	if id != "" {
		target += "?" + url.Values{"id": {"eq." + id}}.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.setAuth(req)
	req.Header.Set("Prefer", "return=representation")
	if single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, result)
}

// send executes req and decodes a 2xx body into result.
func (s *HTTPStore) send(req *http.Request, result any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return transportError(req, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := &Error{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, rerr); err != nil || rerr.Message == "" {
			rerr.Message = strings.TrimSpace(string(respBody))
		}
		return rerr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// transportError classifies a failed round trip. Only a failed dial proves
// the request was never delivered; after that the store may have applied it.
func transportError(req *http.Request, err error) error {
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return ctxErr
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return fmt.Errorf("request failed: %w", err)
}
