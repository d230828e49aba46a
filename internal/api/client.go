// Package api is the HTTP client for the task backend.
//
// Every method returns either a decoded value or an error from the taxonomy in
// errors.go, so callers can tell "unreachable" from "not found" from "already
// exists" without looking at status codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// DefaultLoadTimeout bounds the initial full task fetch.
const DefaultLoadTimeout = 10 * time.Second

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLoadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// WithRequestTimeout bounds every other request. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

type Client struct {
	baseURL        string
	http           *http.Client
	loadTimeout    time.Duration
	requestTimeout time.Duration
	log            *slog.Logger
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:        http.DefaultClient,
		loadTimeout: DefaultLoadTimeout,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Health calls GET / and returns the backend's greeting.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, c.requestTimeout, http.MethodGet, "/", nil, &out, target{}); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ListTasks fetches the whole collection under the load timeout. A body that
// is not a JSON array decodes as an empty collection.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, c.loadTimeout, http.MethodGet, "/tasks", nil, &raw, target{kind: "tasks"}); err != nil {
		return nil, err
	}
	var tasks []model.Task
	if err := c.decodeArray(raw, "/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, c.requestTimeout, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t, target{kind: "task", id: id})
	return t, err
}

func (c *Client) CreateTask(ctx context.Context, body model.TaskCreate) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, c.requestTimeout, http.MethodPost, "/tasks", body, &t, target{kind: "task"})
	return t, err
}

// UpdateTask sends a partial update; only the fields set on body are transmitted.
func (c *Client) UpdateTask(ctx context.Context, id string, body model.TaskUpdate) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, c.requestTimeout, http.MethodPut, "/tasks/"+url.PathEscape(id), body, &t, target{kind: "task", id: id})
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.requestTimeout, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, target{kind: "task", id: id})
}

func (c *Client) ParseNaturalLanguage(ctx context.Context, text string) (model.ParsedTask, error) {
	var p model.ParsedTask
	err := c.do(ctx, c.requestTimeout, http.MethodPost, "/tasks/parse-natural-language", model.ParseRequest{Text: text}, &p, target{kind: "parse"})
	return p, err
}

func (c *Client) ListLists(ctx context.Context) ([]model.List, error) {
	var raw json.RawMessage
	if err := c.do(ctx, c.requestTimeout, http.MethodGet, "/lists", nil, &raw, target{kind: "lists"}); err != nil {
		return nil, err
	}
	var lists []model.List
	if err := c.decodeArray(raw, "/lists", &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) CreateList(ctx context.Context, name string) (model.List, error) {
	var l model.List
	err := c.do(ctx, c.requestTimeout, http.MethodPost, "/lists", model.List{Name: name}, &l, target{kind: "List", id: name})
	return l, err
}

func (c *Client) DeleteList(ctx context.Context, name string) error {
	return c.do(ctx, c.requestTimeout, http.MethodDelete, "/lists/"+url.PathEscape(name), nil, nil, target{kind: "List", id: name})
}

func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var raw json.RawMessage
	if err := c.do(ctx, c.requestTimeout, http.MethodGet, "/tags", nil, &raw, target{kind: "tags"}); err != nil {
		return nil, err
	}
	var tags []model.Tag
	if err := c.decodeArray(raw, "/tags", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	var t model.Tag
	err := c.do(ctx, c.requestTimeout, http.MethodPost, "/tags", model.Tag{Name: name}, &t, target{kind: "Tag", id: name})
	return t, err
}

func (c *Client) DeleteTag(ctx context.Context, name string) error {
	return c.do(ctx, c.requestTimeout, http.MethodDelete, "/tags/"+url.PathEscape(name), nil, nil, target{kind: "Tag", id: name})
}

// target names the resource a request is about, for error messages.
type target struct {
	kind string
	id   string
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, body, out any, tgt target) error {
	var cancel context.CancelFunc = func() {}
	reqCtx := ctx
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Only our own deadline counts as a timeout; a cancelled parent is a plain failure.
		if timeout > 0 && ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			c.log.Warn("request timed out", "method", method, "path", path, "after", timeout)
			return fmt.Errorf("%w: %s %s after %s", ErrTimeout, method, path, timeout)
		}
		c.log.Warn("request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrNetwork, method, path, err)
	}
	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp.StatusCode, detailOf(data), tgt)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) decodeArray(raw json.RawMessage, path string, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.log.Warn("expected a JSON array; treating as empty", "path", path)
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func classify(code int, detail string, tgt target) error {
	switch {
	case code == http.StatusNotFound:
		return NotFoundError{Kind: tgt.kind, ID: tgt.id, Detail: detail}
	case code == http.StatusConflict,
		code == http.StatusBadRequest && strings.Contains(strings.ToLower(detail), "already exists"):
		return DuplicateError{Kind: tgt.kind, Name: tgt.id, Detail: detail}
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return ValidationError{Detail: detail}
	}
	return StatusError{Code: code, Detail: detail}
}

// detailOf extracts the "detail" member of an error body. Validation
// responses that carry a list of problems yield their first message.
func detailOf(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil && len(items) > 0 {
		return strings.TrimSpace(items[0].Msg)
	}
	return ""
}
