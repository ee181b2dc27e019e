package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Store writes one session record as a single atomic save.
type Store interface {
	Save(ctx context.Context, rec Record) error
}

// RemoteStore submits records to the external archive endpoint as one JSON
// POST per save.
type RemoteStore struct {
	url    string
	token  string
	client *http.Client
}

// NewRemoteStore creates a store targeting the given endpoint. The token is
// optional; when set it is sent as a bearer credential.
func NewRemoteStore(url, token string) *RemoteStore {
	return &RemoteStore{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Save posts the record and treats any non-2xx response as failure.
func (s *RemoteStore) Save(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode archive record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build archive request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("archive request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("archive store returned status %d", resp.StatusCode)
	}
	return nil
}
