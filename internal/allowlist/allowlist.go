package allowlist

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Checker decides which browser origins may call the API
type Checker struct {
	origins []string
	any     bool
	logger  *zap.Logger
}

// NewChecker creates a new origin checker. A "*" entry allows every origin.
func NewChecker(origins []string, logger *zap.Logger) *Checker {
	// Normalize origins (lowercase, no trailing slash)
	normalized := make([]string, 0, len(origins))
	allowAny := false
	for _, origin := range origins {
		o := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			allowAny = true
		}
		normalized = append(normalized, o)
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized origin allowlist", zap.Strings("origins", normalized))
	}

	return &Checker{
		origins: normalized,
		any:     allowAny,
		logger:  logger,
	}
}

// IsAllowed checks if the origin is in the allowlist
func (c *Checker) IsAllowed(origin string) bool {
	if origin == "" || len(c.origins) == 0 {
		return false
	}
	if c.any {
		return true
	}

	origin = strings.TrimSuffix(strings.ToLower(origin), "/")
	for _, allowed := range c.origins {
		if allowed == origin {
			return true
		}
	}

	if c.logger != nil {
		c.logger.Debug("Origin not allowed", zap.String("origin", origin))
	}
	return false
}

// Middleware adds CORS headers for allowed origins and answers preflight
// requests
func (c *Checker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if c.IsAllowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					h.Set("Access-Control-Allow-Headers", reqHeaders)
				}
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
