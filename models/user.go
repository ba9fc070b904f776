// Package models, uygulamanın domain modellerini tanımlar.
//
// Modeller hem veritabanı satırlarının Go karşılığıdır hem de API'den
// gelen/giden JSON'un şeklini belirler (`json:"..."` tag'leri).
package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// User, bir kullanıcı hesabını temsil eder.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"` // nullable
	PasswordHash string    `json:"-"`               // API response'a asla dahil edilmez
	IsAdmin      bool      `json:"is_admin"`
	Language     string    `json:"language"` // "en", "tr"
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUserRequest, kayıt isteği. Hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Language string `json:"language"`
}

// Validate, kayıt isteğini kontrol eder:
//   - Username: 3-32 karakter, harf/rakam/alt çizgi
//   - Password: en az 8 karakter
//   - Email: opsiyonel, geçerli adres
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	n := utf8.RuneCountInString(r.Username)
	if n < 3 || n > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}
	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return fmt.Errorf("invalid email address")
		}
	}

	switch r.Language {
	case "":
		r.Language = "en"
	case "en", "tr":
	default:
		return fmt.Errorf("unsupported language: %s", r.Language)
	}

	return nil
}

// LoginRequest, giriş isteği.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in boş alan içermediğini kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
