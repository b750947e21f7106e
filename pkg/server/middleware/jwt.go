package middleware

import (
	"errors"
	"net"
	"net/http"
	"regexp"

	"github.com/tictoc/tictoc/pkg/identity"
	"github.com/tictoc/tictoc/pkg/token"
)

var bearerRegex = regexp.MustCompile(`^Bearer\s+(\S+)\s*$`)

// JWTAuthenticator is middleware that validates login tokens
type JWTAuthenticator struct {
	issuer func() *token.Issuer
}

// NewJWTAuthenticator creates a new JWT authenticator middleware. issuer is
// consulted on every request so configuration reloads take effect.
func NewJWTAuthenticator(issuer func() *token.Issuer) *JWTAuthenticator {
	return &JWTAuthenticator{issuer: issuer}
}

// Middleware returns an HTTP middleware that validates JWT tokens
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Authorization missing"))
			return
		}

		tokenMatches := bearerRegex.FindStringSubmatch(authHeader)
		if len(tokenMatches) != 2 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Malformed authorization header"))
			return
		}

		claims, err := j.issuer().Parse(tokenMatches[1])
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			if errors.Is(err, token.ErrTokenExpired) {
				_, _ = w.Write([]byte("Token expired"))
			} else {
				_, _ = w.Write([]byte("Invalid token"))
			}
			return
		}

		id := identity.FromClaims(claims).WithRemoteIP(RemoteIP(r))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// RemoteIP returns the client address of r without its port, or nil.
func RemoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
