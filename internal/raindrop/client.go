package raindrop

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

	"raindrop-mcp/internal/logger"
)

// Options configures a Client. Token is required; everything else has a
// sensible default.
type Options struct {
	Token          string
	BaseURL        string        // default: https://api.raindrop.io/rest/v1
	Timeout        time.Duration // per-attempt timeout, default: 30s
	MaxRetries     int           // extra attempts after the first, default: 3
	RetryBaseDelay time.Duration // default: 1s, doubles per retry
	Logger         logger.Logger
}

// Client is the sole path to the Raindrop.io REST API. It is stateless beyond
// its fixed configuration, so concurrent use needs no locking. Every call goes
// through one uniform retry and error-classification policy.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	maxRetries int
	baseDelay  time.Duration
	log        logger.Logger

	// sleep is swapped out in tests to observe backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("raindrop: token is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.raindrop.io/rest/v1"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("raindrop: MaxRetries must be >= 0, got %d", opts.MaxRetries)
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		http:       &http.Client{Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.RetryBaseDelay,
		log:        opts.Logger,
		sleep:      sleepCtx,
	}, nil
}

// --- bookmarks ---

func (c *Client) GetBookmark(ctx context.Context, id int64) (*Bookmark, error) {
	var env struct {
		Item Bookmark `json:"item"`
	}
	op := fmt.Sprintf("fetching bookmark %d", id)
	if err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/raindrop/%d", id), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Item, nil
}

func (c *Client) SearchBookmarks(ctx context.Context, f SearchFilter) (*SearchResult, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("search", f.Query)
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("perpage", strconv.Itoa(f.PerPage))
	}

	var result SearchResult
	op := fmt.Sprintf("searching bookmarks in collection %d", f.Collection)
	if err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/raindrops/%d", f.Collection), q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateBookmark(ctx context.Context, p CreateBookmarkParams) (*Bookmark, error) {
	if p.Link == "" {
		return nil, badParams("a link is required to create a bookmark")
	}

	body := map[string]interface{}{
		"link":        p.Link,
		"pleaseParse": map[string]interface{}{},
	}
	if p.Title != "" {
		body["title"] = p.Title
	}
	if p.Excerpt != "" {
		body["excerpt"] = p.Excerpt
	}
	if p.Note != "" {
		body["note"] = p.Note
	}
	if len(p.Tags) > 0 {
		body["tags"] = p.Tags
	}
	if p.Important {
		body["important"] = true
	}
	// Zero is the server default (Unsorted) and stays out of the payload;
	// any other value, Trash (-1) included, becomes a nested reference.
	if p.Collection != 0 {
		body["collection"] = CollectionRef{ID: p.Collection}
	}

	var env struct {
		Item Bookmark `json:"item"`
	}
	if err := c.do(ctx, "creating bookmark", http.MethodPost, "/raindrop", nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Item, nil
}

func (c *Client) UpdateBookmark(ctx context.Context, id int64, p UpdateBookmarkParams) (*Bookmark, error) {
	body := map[string]interface{}{}
	if p.Link != nil {
		body["link"] = *p.Link
	}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Excerpt != nil {
		body["excerpt"] = *p.Excerpt
	}
	if p.Note != nil {
		body["note"] = *p.Note
	}
	if p.Tags != nil {
		body["tags"] = *p.Tags
	}
	if p.Important != nil {
		body["important"] = *p.Important
	}
	// Unlike create, an explicit collection of 0 is forwarded: on update it
	// means "move to Unsorted".
	if p.Collection != nil {
		body["collection"] = CollectionRef{ID: *p.Collection}
	}

	var env struct {
		Item Bookmark `json:"item"`
	}
	op := fmt.Sprintf("updating bookmark %d", id)
	if err := c.do(ctx, op, http.MethodPut, fmt.Sprintf("/raindrop/%d", id), nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Item, nil
}

func (c *Client) DeleteBookmark(ctx context.Context, id int64) error {
	op := fmt.Sprintf("deleting bookmark %d", id)
	return c.do(ctx, op, http.MethodDelete, fmt.Sprintf("/raindrop/%d", id), nil, nil, nil)
}

// --- collections ---

func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var env struct {
		Items []Collection `json:"items"`
	}
	if err := c.do(ctx, "listing collections", http.MethodGet, "/collections", nil, nil, &env); err != nil {
		return nil, err
	}
	// Order as returned by the server; no local re-sort.
	return env.Items, nil
}

func (c *Client) GetCollection(ctx context.Context, id int64) (*Collection, error) {
	var env struct {
		Item Collection `json:"item"`
	}
	op := fmt.Sprintf("fetching collection %d", id)
	if err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/collection/%d", id), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Item, nil
}

func (c *Client) CreateCollection(ctx context.Context, p CreateCollectionParams) (*Collection, error) {
	if p.Title == "" {
		return nil, badParams("a title is required to create a collection")
	}

	body := map[string]interface{}{
		"title": p.Title,
	}
	if p.Description != "" {
		body["description"] = p.Description
	}
	if p.Public {
		body["public"] = true
	}
	if p.View != "" {
		body["view"] = p.View
	}
	if p.Parent != 0 {
		body["parent"] = CollectionRef{ID: p.Parent}
	}

	var env struct {
		Item Collection `json:"item"`
	}
	if err := c.do(ctx, "creating collection", http.MethodPost, "/collection", nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Item, nil
}

func (c *Client) UpdateCollection(ctx context.Context, id int64, p UpdateCollectionParams) (*Collection, error) {
	body := map[string]interface{}{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Public != nil {
		body["public"] = *p.Public
	}
	if p.View != nil {
		body["view"] = *p.View
	}
	if p.Parent != nil {
		body["parent"] = CollectionRef{ID: *p.Parent}
	}

	var env struct {
		Item Collection `json:"item"`
	}
	op := fmt.Sprintf("updating collection %d", id)
	if err := c.do(ctx, op, http.MethodPut, fmt.Sprintf("/collection/%d", id), nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Item, nil
}

// DeleteCollection removes a collection; the server moves its bookmarks to
// Unsorted as a side effect.
func (c *Client) DeleteCollection(ctx context.Context, id int64) error {
	op := fmt.Sprintf("deleting collection %d", id)
	return c.do(ctx, op, http.MethodDelete, fmt.Sprintf("/collection/%d", id), nil, nil, nil)
}

// --- tags ---

func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var env struct {
		Items []Tag `json:"items"`
	}
	if err := c.do(ctx, "listing tags", http.MethodGet, "/tags", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Items, nil
}

// RenameTag renames a tag across every bookmark in one server-side call.
func (c *Client) RenameTag(ctx context.Context, oldName, newName string) error {
	if oldName == "" || newName == "" {
		return badParams("both the current and the new tag name are required")
	}
	body := map[string]interface{}{
		"tags":    []string{oldName},
		"replace": newName,
	}
	op := fmt.Sprintf("renaming tag %q to %q", oldName, newName)
	return c.do(ctx, op, http.MethodPut, "/tag", nil, body, nil)
}

// DeleteTag removes a tag from every bookmark in one server-side call.
func (c *Client) DeleteTag(ctx context.Context, name string) error {
	if name == "" {
		return badParams("a tag name is required")
	}
	body := map[string]interface{}{
		"tags": []string{name},
	}
	op := fmt.Sprintf("deleting tag %q", name)
	return c.do(ctx, op, http.MethodDelete, "/tag", nil, body, nil)
}

// --- account ---

// GetCurrentUser returns the authenticated account as an opaque structure.
func (c *Client) GetCurrentUser(ctx context.Context) (map[string]interface{}, error) {
	var env struct {
		User map[string]interface{} `json:"user"`
	}
	if err := c.do(ctx, "fetching the current user", http.MethodGet, "/user", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// --- transport ---

// do issues one logical API call: marshal the body once, then attempt it up to
// 1+maxRetries times, re-sending the identical request each time. Retryable
// failures back off exponentially (baseDelay, 2x, 4x, ...); terminal failures
// return immediately. The attempt counter lives in this loop and nowhere else.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("raindrop: encoding %s request: %w", op, err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr *APIError
	for attempt := 0; ; attempt++ {
		respBody, apiErr := c.attempt(ctx, op, method, endpoint, payload)
		if apiErr == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("raindrop: decoding %s response: %w", op, err)
			}
			return nil
		}

		lastErr = apiErr
		if !apiErr.Retryable() || attempt >= c.maxRetries {
			c.log.Warn("raindrop call failed",
				logger.String("op", op),
				logger.Int("attempts", attempt+1),
				logger.String("kind", string(apiErr.Kind)),
				logger.Int("status", apiErr.StatusCode))
			return lastErr
		}

		delay := c.baseDelay << attempt
		c.log.Warn("raindrop call failed, retrying",
			logger.String("op", op),
			logger.Int("attempt", attempt+1),
			logger.Duration("next_retry_in", delay),
			logger.Int("status", apiErr.StatusCode))
		if err := c.sleep(ctx, delay); err != nil {
			return lastErr
		}
	}
}

// attempt performs a single HTTP exchange and classifies its outcome.
func (c *Client) attempt(ctx context.Context, op, method, endpoint string, payload []byte) ([]byte, *APIError) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &APIError{Kind: KindUnexpected, Message: fmt.Sprintf("invalid request while %s: %v", op, err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// No response at all: DNS failure, timeout, reset.
		return nil, connectivityError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectivityError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(op, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// sleepCtx waits out a backoff delay, bailing early if the context dies.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
