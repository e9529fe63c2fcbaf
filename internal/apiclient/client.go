// Package apiclient is the HTTP client for the journal API, used by the CLI
// and by the client-side upload/gallery packages.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/images"
)

// Client talks to a journal API server. Identity travels as either a Bearer
// session token or a guest ID header; the server derives the owner from it.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	guestID string
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests with a Bearer session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithGuestID authenticates requests with a guest identity header.
func WithGuestID(id string) Option {
	return func(c *Client) { c.guestID = id }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New constructs a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

type listResponse struct {
	Success bool           `json:"success"`
	Images  []images.Image `json:"images"`
	Count   int            `json:"count"`
}

// Upload posts one file as multipart form data and returns the stored
// image's metadata.
func (c *Client) Upload(ctx context.Context, name, contentType string, size int64, r io.Reader) (images.Image, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
		header.Set("Content-Type", contentType)
		part, err := form.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", pr)
	if err != nil {
		return images.Image{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return images.Image{}, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return images.Image{}, c.apiError(resp)
	}

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return images.Image{}, fmt.Errorf("decode upload response: %w", err)
	}
	return images.Image{
		URL:      body.URL,
		Filename: body.Filename,
		Size:     body.Size,
		MimeType: body.Type,
	}, nil
}

// List fetches the caller's full gallery listing.
func (c *Client) List(ctx context.Context) ([]images.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/images", nil)
	if err != nil {
		return nil, err
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return body.Images, nil
}

// Delete removes the image at imageURL.
func (c *Client) Delete(ctx context.Context, imageURL string) error {
	endpoint := c.baseURL + "/api/images/delete?url=" + url.QueryEscape(imageURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		return
	}
	if c.guestID != "" {
		req.Header.Set("X-Guest-Id", c.guestID)
	}
}

func (c *Client) apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("api error: status %d", resp.StatusCode)
}
