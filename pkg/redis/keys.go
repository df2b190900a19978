package redis

import "strings"

// Every key the backend writes lives under "ff:<kind>:...". Empty parts are
// dropped so optional segments never produce "::".
const keyNamespace = "ff"

const (
	kindIdempotency = "idempotency"
	kindRateLimit   = "rl"
	kindLock        = "lock"
	kindSession     = "session"
)

func buildKey(kind string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, keyNamespace, kind)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}

// IdempotencyKey is used for replayable HTTP writes and webhook event claims.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(kindIdempotency, scope, id)
}

// RateLimitKey addresses one fixed-window counter, e.g. ff:rl:login:ip:1.2.3.4.
func (c *Client) RateLimitKey(policy, scope, value string) string {
	return buildKey(kindRateLimit, strings.ToLower(policy), scope, value)
}

func (c *Client) LockKey(name string) string {
	return buildKey(kindLock, name)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey(kindSession, "access", accessID)
}
