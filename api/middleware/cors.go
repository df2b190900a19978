package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS applies the allowed-origin policy. origins is a comma separated list;
// "*" or an empty value allows any origin without credentials.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := parseOrigins(origins)
	wildcard := len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*")
	if wildcard {
		allowed = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "Stripe-Signature", "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader, "X-FF-Token"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}).Handler
}

func parseOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
