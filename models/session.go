package models

import "time"

// Session, bir refresh token oturumu.
// Access token kısa ömürlüdür ve DB'ye bakmadan doğrulanır; refresh token
// DB'de tutulur ki logout'ta veya ban'da iptal edilebilsin.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
