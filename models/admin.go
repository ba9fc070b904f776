package models

import "time"

// AdminUserListItem, admin kullanıcı listesindeki satır.
// Ban ve warn bilgisi tek sorguda correlated subquery ile toplanır.
type AdminUserListItem struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      *string    `json:"email,omitempty"`
	IsAdmin    bool       `json:"is_admin"`
	CreatedAt  time.Time  `json:"created_at"`
	IsBanned   bool       `json:"is_banned"`
	BanEndDate *time.Time `json:"ban_end_date"`
	WarnCount  int        `json:"warn_count"`
}

// BulkBanResult, toplu ban işleminin kullanıcı başına sonucu.
type BulkBanResult struct {
	Bans []Ban `json:"bans"`
}

// BulkWarnResult, toplu warn işleminin kullanıcı başına sonucu.
type BulkWarnResult struct {
	Outcomes []WarnOutcome `json:"outcomes"`
}

// PurgeResult, süresi dolmuş ban temizliğinin sonucu.
type PurgeResult struct {
	Deleted int64 `json:"deleted"`
}
