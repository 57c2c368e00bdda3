package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/dmitrijs2005/capgallery/internal/client/config"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/common"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
	"github.com/dmitrijs2005/capgallery/internal/netx"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
)

const (
	pathCurrentUser = "/auth/user"
	pathLogin       = "/auth/login"
	pathRegister    = "/auth/register"
	pathAllPosts    = "/posts/all"
	pathMyPosts     = "/posts/my"
	pathCreatePost  = "/posts/create"

	imageFieldName = "image"
	maxErrorBody   = 512
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
}

type Option func(*HTTPClient)

// WithTransport replaces the base round tripper (wrapped by otelhttp).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) {
		c.http.Transport = otelhttp.NewTransport(rt)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// NewHTTPClient builds a client for cfg's API base URL with a fresh cookie jar.
func NewHTTPClient(cfg *config.Config, opts ...Option) (*HTTPClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		baseURL: cfg.BaseURL(),
		http: &http.Client{
			Jar:       jar,
			Timeout:   cfg.RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.metrics.ObserveRequest(endpoint, resp.StatusCode, time.Since(start))

	if err := mapStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// mapStatus turns a non-2xx response into a sentinel-wrapped error. It reads
// (a prefix of) the body for the message but does not close it.
func mapStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := string(bytes.TrimSpace(b))

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return fmt.Errorf("%w: %s; body: %s", ErrUnexpectedStatus, resp.Status, detail)
	}
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

type currentUserResponse struct {
	User *struct {
		Username string `json:"username"`
	} `json:"user"`
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, "auth.user", http.MethodGet, pathCurrentUser, nil, "")
	if err != nil {
		return "", err
	}

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if isFalsy(raw) {
		return "", nil
	}

	var body currentUserResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if body.User == nil {
		return "", nil
	}
	return body.User.Username, nil
}

func isFalsy(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}

func (c *HTTPClient) postCredentials(ctx context.Context, endpoint, path string, creds models.Credentials) error {
	b, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, endpoint, http.MethodPost, path, bytes.NewReader(b), "application/json")
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) error {
	creds.ConfirmPassword = ""
	return c.postCredentials(ctx, "auth.login", pathLogin, creds)
}

func (c *HTTPClient) Register(ctx context.Context, creds models.Credentials) error {
	return c.postCredentials(ctx, "auth.register", pathRegister, creds)
}

func (c *HTTPClient) listPosts(ctx context.Context, endpoint, path string) ([]models.Post, error) {
	resp, err := c.do(ctx, endpoint, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := decodeJSON(resp, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (c *HTTPClient) AllPosts(ctx context.Context) ([]models.Post, error) {
	return c.listPosts(ctx, "posts.all", pathAllPosts)
}

func (c *HTTPClient) MyPosts(ctx context.Context) ([]models.Post, error) {
	return c.listPosts(ctx, "posts.my", pathMyPosts)
}

func (c *HTTPClient) CreatePost(ctx context.Context, upload *models.PendingUpload) (models.Post, error) {
	body, ct, err := netx.MultipartBody(imageFieldName, upload.FileName, upload.ContentType, bytes.NewReader(upload.Data))
	if err != nil {
		return models.Post{}, err
	}

	resp, err := c.do(ctx, "posts.create", http.MethodPost, pathCreatePost, body, ct)
	if err != nil {
		return models.Post{}, err
	}

	var post models.Post
	if err := decodeJSON(resp, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}
