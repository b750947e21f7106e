package identity

import (
	"context"
	"net"
	"time"

	"github.com/tictoc/tictoc/pkg/model"
	"github.com/tictoc/tictoc/pkg/token"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated caller for a request.
type Identity struct {
	// Token claims
	UserID    int64
	Name      string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// FromClaims creates an Identity from verified token claims.
// IssuedAt and ExpiresAt stay zero for tokens without those claims.
func FromClaims(claims *token.Claims) *Identity {
	id := &Identity{
		UserID: claims.ID,
		Name:   claims.Name,
		Email:  claims.Email,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// User returns the public user view of the identity.
func (i *Identity) User() model.UserView {
	return model.UserView{ID: i.UserID, Name: i.Name, Email: i.Email}
}

// Expires reports whether the identity's token carries an expiry.
func (i *Identity) Expires() bool {
	return !i.ExpiresAt.IsZero()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
