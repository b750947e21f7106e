// Package token issues and parses the login tokens handed out by
// POST /users/login.
//
// Tokens are HS256 JWTs whose claims are the public user view
// ({"id","name","email"}). When a lifetime is configured the standard iat and
// exp claims are added as well; otherwise the token never expires and decodes
// to exactly the user view.
//
// # Usage
//
//	issuer := token.NewIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL())
//	signed, err := issuer.Issue(user.View())
//
//	claims, err := issuer.Parse(signed)
//	if errors.Is(err, token.ErrTokenExpired) {
//	    // ask the caller to log in again
//	}
package token
