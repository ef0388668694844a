package config

import (
	"fmt"
	"net/url"
	"time"
)

// FeedConfig describes the streaming market-data endpoint.
type FeedConfig struct {
	URL              string        `mapstructure:"url"`
	Token            string        `mapstructure:"token"`
	TokenParameter   string        `mapstructure:"token_parameter"` // SSM parameter holding the token in prod
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

// parameterLookup is swapped in tests.
var parameterLookup = getParameterStoreValue

// Endpoint returns the feed URL with the token attached as a query parameter.
// In prod the token is read from Parameter Store when TokenParameter is set.
func (cfg *FeedConfig) Endpoint(env string) (string, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse feed url: %w", err)
	}

	token := cfg.Token
	if env == "prod" && cfg.TokenParameter != "" {
		token = parameterLookup(cfg.TokenParameter, true)
	}

	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}
