package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned for any credential whose claims segment
// cannot be extracted.
var ErrMalformedToken = errors.New("malformed token")

// Claims is the subset of the backend's access-token payload the client reads.
type Claims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Subject returns the username claim, falling back to sub.
func (c *Claims) Subject() string {
	if c == nil {
		return ""
	}
	if u := strings.TrimSpace(c.Username); u != "" {
		return u
	}
	return strings.TrimSpace(c.RegisteredClaims.Subject)
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// ExtractClaims splits credential into its three segments and decodes the
// middle one. It never verifies the signature and never panics.
func ExtractClaims(credential string) (*Claims, error) {
	if strings.Count(credential, ".") != 2 {
		return nil, fmt.Errorf("%w: expected 3 segments", ErrMalformedToken)
	}

	out := &Claims{}
	if _, _, err := parser.ParseUnverified(credential, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return out, nil
}

// SubjectOf is ExtractClaims(credential).Subject(), with "" on any failure.
func SubjectOf(credential string) string {
	c, err := ExtractClaims(credential)
	if err != nil {
		return ""
	}
	return c.Subject()
}

// ExpiresAt reports the advisory exp claim.
func ExpiresAt(credential string) (time.Time, bool) {
	c, err := ExtractClaims(credential)
	if err != nil || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}
