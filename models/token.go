package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, access token payload'ı.
// services, middleware ve ws tarafından ortak kullanıldığı için models'te durur.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
