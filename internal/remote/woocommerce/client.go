// Package woocommerce is the remote catalog transport: it lists products
// from a WooCommerce store and creates or updates them through the REST
// API, paced by a request budget.
package woocommerce

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
)

// RemoteName identifies this remote in errors and reports.
const RemoteName = "woocommerce"

// APIPath is the REST API root under the store URL.
const APIPath = "/wp-json/wc/v3"

// Config holds the store connection settings.
type Config struct {
	URL            string
	ConsumerKey    string
	ConsumerSecret string
	RatePerMinute  int
	Timeout        time.Duration
	PageSize       int
}

// Client talks to one WooCommerce store.
type Client struct {
	http     *resty.Client
	limiter  *rate.Limiter
	auth     Authenticator
	pageSize int
}

// New creates a client for cfg.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewValidationError("woo_url", cfg.URL, "must be an absolute http(s) URL")
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = constants.DefaultRatePerMinute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = constants.RemotePageSize
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(u.String(), "/")+APIPath).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "possync/1.0").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute),
		auth:     authFor(u.Scheme == "https", cfg.ConsumerKey, cfg.ConsumerSecret),
		pageSize: cfg.PageSize,
	}, nil
}

// Name implements the remote interface.
func (c *Client) Name() string {
	return RemoteName
}

// apiError is the error body WooCommerce returns.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// request waits for the rate budget and returns an authenticated request.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Join(errors.ErrCanceled, ctx.Err())
		}
		return nil, errors.WrapRemote(RemoteName, 0, err)
	}
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	c.auth.Apply(req)
	return req, nil
}

// check turns a transport error or an error status into a RemoteError.
func check(ctx context.Context, resp *resty.Response, err error, endpoint string) error {
	if err != nil {
		if ctx.Err() != nil {
			return errors.Join(errors.ErrCanceled, ctx.Err())
		}
		re := errors.NewRemoteError(RemoteName, 0, "request failed")
		re.Endpoint = endpoint
		re.Err = err
		return re
	}
	if !resp.IsError() {
		return nil
	}
	msg := resp.Status()
	if e, ok := resp.Error().(*apiError); ok && e.Message != "" {
		msg = e.Message
		if e.Code != "" {
			msg = fmt.Sprintf("%s (%s)", e.Message, e.Code)
		}
	}
	re := errors.NewRemoteError(RemoteName, resp.StatusCode(), msg)
	re.Endpoint = endpoint
	logging.FromContext(ctx).Debug().
		Int("status", resp.StatusCode()).
		Str("endpoint", endpoint).
		Msg("Remote request failed")
	return re
}
