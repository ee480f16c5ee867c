// internal/common/notion/client.go
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	httpclient "kpi-dashboard/internal/common/http"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/observability"

	"github.com/jomei/notionapi"
)

type Client struct {
	api    *notionapi.Client
	logger logger.Logger
}

type Config struct {
	BaseURL string
	APIKey  string
	Version string
	Timeout time.Duration
}

func NewClient(cfg Config, log logger.Logger, opts ...httpclient.Option) (*Client, error) {
	// the workspace API allows roughly three requests per second
	opts = append([]httpclient.Option{
		httpclient.WithRateLimit(3, 1),
		httpclient.WithRetries(apperrors.GetRetryCount(apperrors.ErrCodeWorkspaceUnavailable), 500*time.Millisecond),
	}, opts...)
	transport := httpclient.NewClient(cfg.Timeout, opts...)

	hc := transport.HTTPClient()
	if cfg.BaseURL != "" {
		target, err := url.Parse(cfg.BaseURL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid workspace base url %q", cfg.BaseURL)
		}
		hc.Transport = rebase{target: target, next: transport}
	}

	// throttled responses are already retried by the transport
	apiOpts := []notionapi.ClientOption{notionapi.WithHTTPClient(hc), notionapi.WithRetry(1)}
	if cfg.Version != "" {
		apiOpts = append(apiOpts, notionapi.WithVersion(cfg.Version))
	}

	return &Client{
		api:    notionapi.NewClient(notionapi.Token(cfg.APIKey), apiOpts...),
		logger: log,
	}, nil
}

// QueryDatabase returns one page of results for query.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	var resp *notionapi.DatabaseQueryResponse
	err := c.call(ctx, "notion.query_database", func(ctx context.Context) (err error) {
		resp, err = c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CreatePage adds a page with properties to the database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	var page *notionapi.Page
	err := c.call(ctx, "notion.create_page", func(ctx context.Context) (err error) {
		page, err = c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(databaseID),
			},
			Properties: properties,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// UpdatePage sets properties on a page. Properties not named are left as
// they are.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	var page *notionapi.Page
	err := c.call(ctx, "notion.update_page", func(ctx context.Context) (err error) {
		page, err = c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: properties})
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	ctx, span := observability.StartSpan(ctx, op)
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	err = fn(ctx)

	c.logger.WithContext(ctx).Debug("workspace request", map[string]interface{}{
		"operation":  op,
		"failed":     err != nil,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if err != nil {
		return workspaceError(op, err)
	}
	return nil
}

func workspaceError(op string, err error) error {
	var apiErr *notionapi.Error
	if !errors.As(err, &apiErr) {
		return apperrors.NewWorkspaceUnavailableError(op, err)
	}

	details := fmt.Sprintf("status %d: %s %s", apiErr.Status, apiErr.Code, apiErr.Message)
	switch {
	case apiErr.Code == "unauthorized" || apiErr.Code == "restricted_resource" ||
		apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
		return apperrors.NewSourceAuthFailedError("notion", details)
	case apiErr.Code == "object_not_found" || apiErr.Status == http.StatusNotFound:
		return apperrors.NewTaskNotFoundError("").WithMetadata("details", details)
	case apiErr.Code == "validation_error":
		return apperrors.NewTaskValidationFailedError(apiErr.Message, details)
	default:
		return apperrors.NewWorkspaceUnavailableError(op, errors.New(details))
	}
}

// rebase sends library requests to target. The library always addresses
// the public API host under /v1.
type rebase struct {
	target *url.URL
	next   http.RoundTripper
}

func (r rebase) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = r.target.Scheme
	out.URL.Host = r.target.Host
	out.URL.Path = strings.TrimSuffix(r.target.Path, "/") + strings.TrimPrefix(req.URL.Path, "/v1")
	out.URL.RawPath = ""
	out.Host = r.target.Host
	return r.next.RoundTrip(out)
}
