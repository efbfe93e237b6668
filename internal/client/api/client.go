// Package api is a thin client for the registry HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/rdb/internal/server/models"
)

// ErrNotFound is returned by Get when the mod does not exist.
var ErrNotFound = errors.New("mod not found")

// StatusError carries a non-2xx response; Message is the server's text body.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// Submit posts sub and returns the server's confirmation text.
func (c *Client) Submit(ctx context.Context, sub models.Submission) (string, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return "", err
	}
	data, err := c.do(ctx, http.MethodPost, "/mods", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) Get(ctx context.Context, owner, name string) (*models.PublicMod, error) {
	data, err := c.do(ctx, http.MethodGet, "/mods/"+url.PathEscape(owner)+"/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	var m models.PublicMod
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) List(ctx context.Context, page int, sort, search string) ([]models.PublicMod, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if sort != "" {
		q.Set("sort", sort)
	}
	if search != "" {
		q.Set("search", search)
	}
	data, err := c.do(ctx, http.MethodGet, "/mods?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var mods []models.PublicMod
	if err := json.Unmarshal(data, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

func (c *Client) Count(ctx context.Context) (int64, error) {
	data, err := c.do(ctx, http.MethodGet, "/mods/count", nil)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, err
	}
	return n, nil
}
