package woocommerce

import (
	"github.com/go-resty/resty/v2"
)

// Authenticator applies credentials to a request.
type Authenticator interface {
	Apply(req *resty.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *resty.Request) {}

// BasicAuth sends the consumer key and secret as HTTP basic credentials.
// WooCommerce accepts this over HTTPS only.
type BasicAuth struct {
	ConsumerKey    string
	ConsumerSecret string
}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *resty.Request) {
	req.SetBasicAuth(a.ConsumerKey, a.ConsumerSecret)
}

// QueryAuth sends the consumer key and secret as query parameters, for
// stores served over plain HTTP.
type QueryAuth struct {
	ConsumerKey    string
	ConsumerSecret string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *resty.Request) {
	req.SetQueryParam("consumer_key", a.ConsumerKey)
	req.SetQueryParam("consumer_secret", a.ConsumerSecret)
}

// authFor picks basic auth for https URLs and query auth otherwise.
func authFor(https bool, key, secret string) Authenticator {
	if key == "" && secret == "" {
		return &NoAuth{}
	}
	if https {
		return &BasicAuth{ConsumerKey: key, ConsumerSecret: secret}
	}
	return &QueryAuth{ConsumerKey: key, ConsumerSecret: secret}
}
