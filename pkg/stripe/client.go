package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/logger"
)

// Mode is the Stripe account mode a key belongs to.
type Mode string

const (
	ModeTest Mode = "test"
	ModeLive Mode = "live"
)

// Secret and restricted keys both carry the mode in their prefix.
var keyPrefixes = map[Mode][]string{
	ModeTest: {"sk_test_", "rk_test_"},
	ModeLive: {"sk_live_", "rk_live_"},
}

// ErrNotConfigured means no API key was supplied. Checkout degrades to
// manual payment and the webhook answers 503.
var ErrNotConfigured = errors.New("stripe api key is not configured")

// Client records that the SDK has been keyed, plus the webhook secret.
// Resource calls go through the stripe-go package functions.
type Client struct {
	mode          Mode
	signingSecret string
}

// NewClient keys the stripe-go SDK. The key's prefix must agree with
// FRESHFOLD_STRIPE_ENV so a live key never runs against a test deployment.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode := Mode(cfg.Environment())
	prefixes, ok := keyPrefixes[mode]
	if !ok {
		return nil, fmt.Errorf("stripe environment %q is not one of %q or %q", mode, ModeTest, ModeLive)
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrNotConfigured
	}
	if !hasAnyPrefix(key, prefixes) {
		return nil, fmt.Errorf("stripe %s mode needs a key starting with %s", mode, strings.Join(prefixes, " or "))
	}

	stripe.Key = key
	stripe.SetAppInfo(&stripe.AppInfo{Name: "freshfold-backend"})

	c := &Client{mode: mode, signingSecret: strings.TrimSpace(cfg.Secret)}
	if logg != nil {
		ctx = logg.WithField(ctx, "stripe_mode", string(mode))
		logg.Info(ctx, "stripe configured")
		if c.signingSecret == "" {
			logg.Warn(ctx, "stripe webhook secret missing; webhook deliveries will be rejected")
		}
	}
	return c, nil
}

func (c *Client) Mode() Mode {
	if c == nil {
		return ""
	}
	return c.mode
}

// SigningSecret is the whsec_ value used to verify webhook signatures.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
