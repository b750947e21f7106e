package endpoints

import (
	"net/http"
	"time"

	"github.com/tictoc/tictoc/pkg/identity"
	"github.com/tictoc/tictoc/pkg/server"
	"github.com/tictoc/tictoc/pkg/server/middleware"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	jwtMiddleware := middleware.NewJWTAuthenticator(s.Issuer)

	// Create a subrouter for /whoami that uses JWT auth
	whoamiRouter := s.Router.PathPrefix("/whoami").Subrouter()
	whoamiRouter.Use(jwtMiddleware.Middleware)

	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			http.Error(w, "Unable to determine identity", http.StatusUnauthorized)
			return
		}

		response := WhoamiResponse{
			ID:    id.UserID,
			Name:  id.Name,
			Email: id.Email,
		}
		if !id.IssuedAt.IsZero() {
			issuedAt := id.IssuedAt.UTC()
			response.IssuedAt = &issuedAt
		}
		if id.Expires() {
			expiresAt := id.ExpiresAt.UTC()
			response.ExpiresAt = &expiresAt
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}
