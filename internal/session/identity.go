package session

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the caller identity every mutating gateway call and chat
// channel needs. It is always passed explicitly; nothing in the client
// reads ambient global state.
type Identity struct {
	UserID int64
	Name   string
	Email  string
	Token  string
}

func (id Identity) Authenticated() bool { return id.Token != "" }

// FromToken reads display claims out of a letsplay session token. The
// client holds no signing secret, verification is the server's job, so
// the claims are parsed unverified and used only for request
// construction and display.
func FromToken(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("parse session token: %w", err)
	}

	id := Identity{Token: token}
	if uid, ok := numericClaim(claims, "uid"); ok {
		id.UserID = uid
	} else if sub, ok := numericClaim(claims, "sub"); ok {
		id.UserID = sub
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}

// numericClaim tolerates the three shapes a numeric claim shows up in
// after JSON decoding: float64, json.Number-ish string, or int.
func numericClaim(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
