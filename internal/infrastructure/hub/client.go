package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

const (
	reqTimeout    = 10 * time.Minute
	maxRetryCount = 3
	retryDelay    = 500 * time.Millisecond

	// DefaultEndpoint адрес публичного Hugging Face Hub
	DefaultEndpoint = "https://huggingface.co"
)

// Client работает с REST API Hugging Face Hub.
// transfer используется для подписанных адресов хранилища LFS и не несёт токен.
// once не повторяет запросы: им идут коммиты и создание веток.
type Client struct {
	*resty.Client
	once     *resty.Client
	transfer *resty.Client
	endpoint string
}

// NewClient создаёт клиента; hc может быть nil.
func NewClient(endpoint, token string, hc *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if hc == nil {
		hc = &http.Client{}
	}

	r := resty.NewWithClient(hc).
		SetBaseURL(endpoint).
		SetTimeout(reqTimeout).
		SetRetryCount(maxRetryCount).
		SetRetryWaitTime(retryDelay).
		SetHeader("User-Agent", "beetle-pipeline")
	once := resty.NewWithClient(hc).
		SetBaseURL(endpoint).
		SetTimeout(reqTimeout).
		SetHeader("User-Agent", "beetle-pipeline")
	if token != "" {
		r.SetAuthToken(token)
		once.SetAuthToken(token)
	}

	t := resty.NewWithClient(hc).
		SetTimeout(reqTimeout).
		SetRetryCount(maxRetryCount).
		SetRetryWaitTime(retryDelay)

	return &Client{Client: r, once: once, transfer: t, endpoint: endpoint}
}

// RepoInfo вызывает GET /api/{type}s/{repo}/revision/{revision}
func (c *Client) RepoInfo(ctx context.Context, repo entity.RepoRef, revision string) error {
	resp, err := c.R().
		SetContext(ctx).
		Get(repo.APIPath() + "/revision/" + url.PathEscape(revision))
	if err != nil {
		return fmt.Errorf("couldn't connect with hub: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("repo %s at %s: %s", repo.ID, revision, resp.Status())
	}
	return nil
}

// CreateBranch вызывает POST /api/{type}s/{repo}/branch/{branch}; конфликт означает, что ветка уже есть.
func (c *Client) CreateBranch(ctx context.Context, repo entity.RepoRef, branch string) error {
	resp, err := c.once.R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		Post(repo.APIPath() + "/branch/" + url.PathEscape(branch))
	if err != nil {
		return fmt.Errorf("couldn't connect with hub: %w", err)
	}
	if resp.StatusCode() == http.StatusConflict {
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("create branch %s in %s: %s: %s", branch, repo.ID, resp.Status(), strings.TrimSpace(resp.String()))
	}
	return nil
}

var _ port.DatasetRegistry = (*Client)(nil)
