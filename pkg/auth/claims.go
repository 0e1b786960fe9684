package auth

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the session token issued by the identity provider. The
// subject is the provider's user id.
type IdentityClaims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

// ExternalID returns the provider user id carried in the subject.
func (c *IdentityClaims) ExternalID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
