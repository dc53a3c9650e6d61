package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
)

// ThumbnailQualities lists thumbnail names from best to worst.
var ThumbnailQualities = []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault", "default"}

// Client resolves thumbnails and durations for media ids.
type Client struct {
	http     *http.Client
	thumbURL string // e.g. https://i.ytimg.com/vi
	apiURL   string // Data API endpoint; empty uses the library default
	apiKey   string

	once  sync.Once
	yt    *youtube.Service
	ytErr error
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURLs overrides thumbnail and API endpoints.
func WithBaseURLs(thumbURL, apiURL string) Option {
	return func(c *Client) { c.thumbURL, c.apiURL = thumbURL, apiURL }
}

// WithHTTPClient overrides the HTTP client used for thumbnail probes.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient constructs a client; an empty apiKey disables duration lookups.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		thumbURL: "https://i.ytimg.com/vi",
		apiKey:   apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Thumbnail returns the best available thumbnail URL: the first candidate answering 200.
func (c *Client) Thumbnail(ctx context.Context, mediaID string) (string, error) {
	for _, q := range ThumbnailQualities {
		u := fmt.Sprintf("%s/%s/%s.jpg", c.thumbURL, url.PathEscape(mediaID), q)
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
		if err != nil {
			return "", err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return u, nil
		}
	}
	return "", fmt.Errorf("thumbnail for %s: %w", mediaID, errs.ErrNotFound)
}

func (c *Client) service() (*youtube.Service, error) {
	c.once.Do(func() {
		opts := []option.ClientOption{option.WithAPIKey(c.apiKey)}
		if c.apiURL != "" {
			opts = append(opts, option.WithEndpoint(c.apiURL))
		}
		c.yt, c.ytErr = youtube.NewService(context.Background(), opts...)
	})
	return c.yt, c.ytErr
}

// Duration looks up the ISO-8601 content duration and returns it formatted.
// Without an API key it returns "00:00".
func (c *Client) Duration(ctx context.Context, mediaID string) (string, error) {
	if c.apiKey == "" {
		return FormatDuration(""), nil
	}
	yt, err := c.service()
	if err != nil {
		return "", fmt.Errorf("youtube client: %w", err)
	}
	resp, err := yt.Videos.List([]string{"contentDetails"}).Id(mediaID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("videos api: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
		return "", fmt.Errorf("media %s: %w", mediaID, errs.ErrNotFound)
	}
	return FormatDuration(resp.Items[0].ContentDetails.Duration), nil
}
