// Package facebook reads the shop's public page feed from the Graph API.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrNotConfigured = errors.New("facebook: page id or access token missing")
	ErrGraphAPI      = errors.New("facebook: graph api error")
)

// Post is one entry of the page feed
type Post struct {
	ID           string    `json:"Id"`
	Message      string    `json:"Message"`
	FullPicture  string    `json:"FullPicture,omitempty"`
	PermalinkURL string    `json:"PermalinkUrl"`
	CreatedTime  time.Time `json:"CreatedTime"`
}

type Client struct {
	graphURL    string
	pageID      string
	accessToken string
	httpClient  *http.Client
}

func NewClient(graphURL, pageID, accessToken string) *Client {
	return &Client{
		graphURL:    graphURL,
		pageID:      pageID,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type graphPost struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	FullPicture  string `json:"full_picture"`
	PermalinkURL string `json:"permalink_url"`
	CreatedTime  string `json:"created_time"`
}

type graphFeed struct {
	Data  []graphPost `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// graphTimeLayout is the ISO-8601 variant Graph uses, e.g. 2024-05-01T03:00:00+0000
const graphTimeLayout = "2006-01-02T15:04:05-0700"

// PagePosts returns the newest posts of the configured page
func (c *Client) PagePosts(ctx context.Context, limit int) ([]Post, error) {
	if c.pageID == "" || c.accessToken == "" {
		return nil, ErrNotConfigured
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := url.Values{}
	q.Set("fields", "id,message,full_picture,permalink_url,created_time")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("access_token", c.accessToken)
	endpoint := fmt.Sprintf("%s/%s/posts?%s", c.graphURL, url.PathEscape(c.pageID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feed graphFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: status %d", ErrGraphAPI, resp.StatusCode)
	}
	if feed.Error != nil || resp.StatusCode != http.StatusOK {
		msg := ""
		if feed.Error != nil {
			msg = feed.Error.Message
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrGraphAPI, resp.StatusCode, msg)
	}

	posts := make([]Post, 0, len(feed.Data))
	for _, p := range feed.Data {
		created, _ := time.Parse(graphTimeLayout, p.CreatedTime)
		posts = append(posts, Post{
			ID:           p.ID,
			Message:      p.Message,
			FullPicture:  p.FullPicture,
			PermalinkURL: p.PermalinkURL,
			CreatedTime:  created,
		})
	}
	return posts, nil
}
