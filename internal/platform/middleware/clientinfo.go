package middleware

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

type browserKey struct{}

// ClientInfo parses the User-Agent header and stores a compact
// browser/platform description in the request context. The operator portal
// is browser-driven, so the request log carries which client made each call.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uaString := r.Header.Get("User-Agent")
		if uaString == "" {
			next.ServeHTTP(w, r)
			return
		}

		ua := useragent.New(uaString)
		name, version := ua.Browser()
		desc := name
		if version != "" {
			desc = name + "/" + version
		}
		if os := ua.OS(); os != "" {
			desc += " (" + os + ")"
		}

		ctx := context.WithValue(r.Context(), browserKey{}, desc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetBrowser retrieves the parsed browser description from the context.
func GetBrowser(ctx context.Context) string {
	if b, ok := ctx.Value(browserKey{}).(string); ok {
		return b
	}
	return ""
}
