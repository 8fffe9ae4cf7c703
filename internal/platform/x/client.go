// Package x publishes to X (Twitter) using OAuth1 user context: media is
// uploaded through the v1.1 endpoint, the post itself goes through v2.
package x

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

const (
	defaultAPIBase    = "https://api.twitter.com"
	defaultUploadBase = "https://upload.twitter.com"
)

// Credentials holds the four OAuth1 user-context secrets.
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Client posts tweets with an optional image.
type Client struct {
	apiBase    string
	uploadBase string
	httpClient *http.Client
}

// NewClient creates a Client whose HTTP transport signs every request with
// the given credentials.
func NewClient(creds Credentials, timeout time.Duration) *Client {
	cfg := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	httpClient := cfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout

	return &Client{
		apiBase:    defaultAPIBase,
		uploadBase: defaultUploadBase,
		httpClient: httpClient,
	}
}

// WithBaseURLs overrides the API endpoints. Used by tests.
func (c *Client) WithBaseURLs(apiBase, uploadBase string) *Client {
	c.apiBase = apiBase
	c.uploadBase = uploadBase
	return c
}

// Publish implements domain.Publisher. When image is non-nil it is uploaded
// first and attached to the tweet. All failures wrap domain.ErrPublishFailed.
func (c *Client) Publish(ctx context.Context, text string, image []byte) error {
	var mediaIDs []string
	if len(image) > 0 {
		id, err := c.uploadMedia(ctx, image)
		if err != nil {
			return err
		}
		mediaIDs = append(mediaIDs, id)
	}
	return c.createTweet(ctx, text, mediaIDs)
}

// uploadMedia pushes PNG bytes through the v1.1 media/upload endpoint and
// returns the media id to attach to the tweet.
func (c *Client) uploadMedia(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", "chart.png")
	if err != nil {
		return "", fmt.Errorf("x: build upload form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("x: write upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("x: close upload form: %w", err)
	}

	url := c.uploadBase + "/1.1/media/upload.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("x: create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("x: upload media: %w: %v", domain.ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("x: upload media: %w: status %d: %s", domain.ErrPublishFailed, resp.StatusCode, body)
	}

	var uploaded struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("x: decode upload response: %w: %v", domain.ErrPublishFailed, err)
	}
	if uploaded.MediaIDString == "" {
		return "", fmt.Errorf("x: upload media: %w: empty media id", domain.ErrPublishFailed)
	}
	return uploaded.MediaIDString, nil
}

func (c *Client) createTweet(ctx context.Context, text string, mediaIDs []string) error {
	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("x: marshal tweet: %w", err)
	}

	url := c.apiBase + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("x: create tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("x: create tweet: %w: %v", domain.ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("x: create tweet: %w: status %d: %s", domain.ErrPublishFailed, resp.StatusCode, respBody)
	}
	return nil
}
