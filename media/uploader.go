// Package media moves base64 data-URI payloads out of the message path and
// into an external object store, returning the hosted URL.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Uploader stores a data-URI payload and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}

// HTTPUploader posts the payload to an upload endpoint that answers with
// {"url": "..."} (the shape cloud media services use for unsigned uploads).
type HTTPUploader struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPUploader(endpoint string) *HTTPUploader {
	return &HTTPUploader{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadRequest struct {
	File string `json:"file"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (u *HTTPUploader) Upload(ctx context.Context, dataURI string) (string, error) {
	if u.Endpoint == "" {
		return "", errors.New("media: upload endpoint not configured")
	}
	body, err := json.Marshal(uploadRequest{File: dataURI})
	if err != nil {
		return "", errors.WithStack(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "media: upload request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", errors.Errorf("media: upload status %d: %s", resp.StatusCode, snippet)
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "media: decode upload response")
	}
	if out.URL == "" {
		return "", errors.New("media: empty url in upload response")
	}
	return out.URL, nil
}
