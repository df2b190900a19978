package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/freshfold/laundry-backend/api/responses"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
)

const maxRateLimitBody = 64 << 10

type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(policy, scope, value string) string
}

// RateLimitRule counts requests sharing a key. An empty key skips the rule.
type RateLimitRule struct {
	Scope string
	Limit int
	key   func(r *http.Request, body []byte) string
	body  bool
}

// PerClientIP keys on the caller address.
func PerClientIP(limit int) RateLimitRule {
	return RateLimitRule{Scope: "ip", Limit: limit, key: func(r *http.Request, _ []byte) string {
		return clientIP(r)
	}}
}

// PerBodyField keys on a hashed, lower-cased JSON string field such as
// "email". Raw values never reach the store or the logs.
func PerBodyField(field string, limit int) RateLimitRule {
	return RateLimitRule{Scope: field, Limit: limit, body: true, key: func(_ *http.Request, body []byte) string {
		var fields map[string]json.RawMessage
		if json.Unmarshal(body, &fields) != nil {
			return ""
		}
		var value string
		if json.Unmarshal(fields[field], &value) != nil {
			return ""
		}
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return ""
		}
		sum := sha256.Sum256([]byte(value))
		return hex.EncodeToString(sum[:])
	}}
}

// PerActor keys on the authenticated user; guests fall through.
func PerActor(limit int) RateLimitRule {
	return RateLimitRule{Scope: "user", Limit: limit, key: func(r *http.Request, _ []byte) string {
		if actor := ActorFromContext(r.Context()); actor.Authenticated() {
			return actor.UserID.String()
		}
		return ""
	}}
}

type RateLimitPolicy struct {
	Name   string
	Window time.Duration
	Rules  []RateLimitRule
}

func (p RateLimitPolicy) active() []RateLimitRule {
	if p.Window <= 0 {
		return nil
	}
	rules := make([]RateLimitRule, 0, len(p.Rules))
	for _, rule := range p.Rules {
		if rule.Limit > 0 && rule.key != nil {
			rules = append(rules, rule)
		}
	}
	return rules
}

// RateLimit rejects a request with 429 once any rule's fixed-window counter
// passes its limit. Disabled rules and a nil store make it a passthrough.
func RateLimit(policy RateLimitPolicy, store counterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	rules := policy.active()
	needsBody := false
	for _, rule := range rules {
		needsBody = needsBody || rule.body
	}

	return func(next http.Handler) http.Handler {
		if len(rules) == 0 || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var body []byte
			if needsBody && r.Body != nil {
				raw, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				body = raw
				r.Body = io.NopCloser(bytes.NewReader(raw))
			}

			for _, rule := range rules {
				value := rule.key(r, body)
				if value == "" {
					continue
				}
				count, err := store.IncrWithTTL(ctx, store.RateLimitKey(policy.Name, rule.Scope, value), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(rule.Limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":   policy.Name,
							"scope":    rule.Scope,
							"attempts": count,
							"limit":    rule.Limit,
						}), "rate limit exceeded")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts. Please try again later."))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
