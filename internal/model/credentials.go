package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Credentials is the closed set of credential shapes a platform may require.
// Each variant validates itself at Configure time.
type Credentials interface {
	Kind() string
	Validate() error
}

// KeyCredentials holds a single API key (YouTube and similar).
type KeyCredentials struct {
	APIKey string `json:"api_key"`
}

// Kind identifies the credential variant.
func (c KeyCredentials) Kind() string { return "key" }

// Validate checks that the key is present.
func (c KeyCredentials) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api key is required")
	}
	return nil
}

// AppCredentials holds an OAuth-style client id/secret pair (Reddit and similar).
type AppCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Kind identifies the credential variant.
func (c AppCredentials) Kind() string { return "app" }

// Validate checks that both halves of the pair are present.
func (c AppCredentials) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("client id and secret are required")
	}
	return nil
}

// FeedCredentials configures URL-addressed sources (RSS feeds, scrape targets).
type FeedCredentials struct {
	FeedURL string `json:"feed_url"`
}

// Kind identifies the credential variant.
func (c FeedCredentials) Kind() string { return "feed" }

// Validate checks that the URL parses and is absolute.
func (c FeedCredentials) Validate() error {
	u, err := url.Parse(c.FeedURL)
	if err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("feed url must be absolute, got %q", c.FeedURL)
	}
	return nil
}

type credentialEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodeCredentials serializes credentials with a kind tag so the store can
// round-trip them without knowing the variant.
func EncodeCredentials(c Credentials) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}
	return json.Marshal(credentialEnvelope{Kind: c.Kind(), Data: data})
}

// DecodeCredentials reverses EncodeCredentials.
func DecodeCredentials(raw []byte) (Credentials, error) {
	var env credentialEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal credential envelope: %w", err)
	}

	var c Credentials
	switch env.Kind {
	case "key":
		var v KeyCredentials
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("unmarshal key credentials: %w", err)
		}
		c = v
	case "app":
		var v AppCredentials
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("unmarshal app credentials: %w", err)
		}
		c = v
	case "feed":
		var v FeedCredentials
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("unmarshal feed credentials: %w", err)
		}
		c = v
	default:
		return nil, fmt.Errorf("unknown credential kind %q", env.Kind)
	}
	return c, nil
}
