package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the claims accepted on bearer tokens guarding write routes.
type JWTClaims struct {
	UserID string `json:"sub_id,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the most specific identifier carried by the claims.
func (c *JWTClaims) Actor() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}
