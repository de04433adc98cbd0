// Package emailtools pulls campaign statistics from the supported cold-email
// tools and maps them into one canonical metrics shape.
package emailtools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Tool string

const (
	Instantly  Tool = "instantly"
	Smartlead  Tool = "smartlead"
	Mailshake  Tool = "mailshake"
	Woodpecker Tool = "woodpecker"
)

var ErrUnsupportedTool = errors.New("unsupported email tool")

// Tools lists every supported tool in display order.
func Tools() []Tool {
	return []Tool{Instantly, Smartlead, Mailshake, Woodpecker}
}

// ParseTool maps a free-text tool name onto a supported Tool, ignoring case
// and surrounding space.
func ParseTool(name string) (Tool, error) {
	candidate := Tool(strings.ToLower(strings.TrimSpace(name)))
	for _, tool := range Tools() {
		if tool == candidate {
			return tool, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedTool, name)
}

// Fetcher pulls the raw aggregate for one account. The credential format is
// provider specific.
type Fetcher interface {
	Fetch(ctx context.Context, credential string) (Raw, error)
}

type Config struct {
	Timeout       time.Duration
	InstantlyURL  string
	SmartleadURL  string
	MailshakeURL  string
	WoodpeckerURL string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	c.InstantlyURL = baseURL(c.InstantlyURL, "https://api.instantly.ai")
	c.SmartleadURL = baseURL(c.SmartleadURL, "https://server.smartlead.ai")
	c.MailshakeURL = baseURL(c.MailshakeURL, "https://api.mailshake.com")
	c.WoodpeckerURL = baseURL(c.WoodpeckerURL, "https://api.woodpecker.co")
	return c
}

func baseURL(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	return strings.TrimRight(value, "/")
}

type Registry struct {
	fetchers map[Tool]Fetcher
}

// NewRegistry wires the four production adapters sharing one HTTP client.
func NewRegistry(cfg Config) *Registry {
	cfg = cfg.withDefaults()
	hc := &http.Client{Timeout: cfg.Timeout}
	r := &Registry{fetchers: map[Tool]Fetcher{}}
	r.Register(Instantly, &instantlyFetcher{http: hc, baseURL: cfg.InstantlyURL})
	r.Register(Smartlead, &smartleadFetcher{http: hc, baseURL: cfg.SmartleadURL})
	r.Register(Mailshake, &mailshakeFetcher{http: hc, baseURL: cfg.MailshakeURL})
	r.Register(Woodpecker, &woodpeckerFetcher{http: hc, baseURL: cfg.WoodpeckerURL})
	return r
}

// NewEmptyRegistry returns a registry with no adapters.
func NewEmptyRegistry() *Registry {
	return &Registry{fetchers: map[Tool]Fetcher{}}
}

func (r *Registry) Register(tool Tool, fetcher Fetcher) {
	r.fetchers[tool] = fetcher
}

// FetchMetrics resolves toolName, fetches the account aggregate and returns
// it normalized.
func (r *Registry) FetchMetrics(ctx context.Context, toolName, credential string) (Metrics, error) {
	tool, err := ParseTool(toolName)
	if err != nil {
		return Metrics{}, err
	}
	fetcher, ok := r.fetchers[tool]
	if !ok {
		return Metrics{}, fmt.Errorf("%w: %s", ErrUnsupportedTool, tool)
	}
	raw, err := fetcher.Fetch(ctx, credential)
	if err != nil {
		return Metrics{}, err
	}
	return Normalize(raw), nil
}
