// Package models: Ban domain modeli.
//
// Ban kuralları:
//   - EndDate nil → kalıcı ban
//   - Bir kullanıcının aynı anda en fazla bir aktif ban'ı olur
//     (EndDate nil veya gelecekte)
//   - Aktif ban varken yeni ban gelirse yeni satır açılmaz; mevcut satır
//     sadece yeni ban daha uzunsa (kalıcı veya daha geç bitiş) güncellenir
//   - CreatorID nil → ban sistem tarafından (warn eşiği) oluşturulmuş
package models

import (
	"fmt"
	"strings"
	"time"
)

// Ban, bir kullanıcının platforma erişim yasağı.
type Ban struct {
	ID               string     `json:"id"`
	CreatorID        *string    `json:"creator_id"`
	CreatorUsername  *string    `json:"creator_username,omitempty"`
	ReceiverID       string     `json:"receiver_id"`
	ReceiverUsername string     `json:"receiver_username,omitempty"`
	EndDate          *time.Time `json:"end_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IsPermanent, ban'ın bitiş tarihi olmadığını belirtir.
func (b *Ban) IsPermanent() bool {
	return b.EndDate == nil
}

// IsActive, ban'ın now anında yürürlükte olup olmadığını döner.
// Bitiş anı dahil değildir: EndDate == now → aktif değil.
func (b *Ban) IsActive(now time.Time) bool {
	return b.EndDate == nil || b.EndDate.After(now)
}

// ExtendedBy, endDate ile gelen yeni bir ban'ın bu ban'ı uzatıp uzatmadığını döner.
// Kalıcı ban hiçbir şeyle uzatılamaz; kalıcı olmayan ban kalıcı veya daha geç
// biten bir ban ile uzatılır. Eşit bitiş tarihi uzatma sayılmaz.
func (b *Ban) ExtendedBy(endDate *time.Time) bool {
	if b.EndDate == nil {
		return false
	}
	if endDate == nil {
		return true
	}
	return endDate.After(*b.EndDate)
}

// NormalizeEndDate, bitiş tarihini UTC'ye çevirip saniyeye yuvarlar (aşağı).
// DATETIME kolonları saniye hassasiyetinde saklandığı için karşılaştırmalar
// DB ile bellek arasında tutarlı kalır.
func NormalizeEndDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Second)
	return &v
}

// BanPeriod, admin panelindeki hazır ban süreleri.
type BanPeriod string

const (
	BanPeriodDay       BanPeriod = "day"
	BanPeriodWeek      BanPeriod = "week"
	BanPeriodMonth     BanPeriod = "month"
	BanPeriodPermanent BanPeriod = "permanent"
)

// ParseBanPeriod, string'i BanPeriod'a çevirir (büyük/küçük harf duyarsız).
func ParseBanPeriod(s string) (BanPeriod, error) {
	p := BanPeriod(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case BanPeriodDay, BanPeriodWeek, BanPeriodMonth, BanPeriodPermanent:
		return p, nil
	}
	return "", fmt.Errorf("unknown ban period: %q", s)
}

// Duration, süreli periyotlar için ban süresi. Kalıcı ban için 0.
func (p BanPeriod) Duration() time.Duration {
	switch p {
	case BanPeriodDay:
		return 24 * time.Hour
	case BanPeriodWeek:
		return 7 * 24 * time.Hour
	case BanPeriodMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

// EndDate, now'dan başlayan ban'ın bitiş tarihi. Kalıcı → nil.
func (p BanPeriod) EndDate(now time.Time) *time.Time {
	d := p.Duration()
	if d == 0 {
		return nil
	}
	end := now.Add(d)
	return NormalizeEndDate(&end)
}

// BanUsersRequest, seçili kullanıcıları banlama isteği.
type BanUsersRequest struct {
	UserIDs []string  `json:"user_ids"`
	Period  BanPeriod `json:"period"`
}

// Validate, isteği kontrol eder ve tekrarlanan ID'leri temizler.
func (r *BanUsersRequest) Validate() error {
	ids, err := normalizeUserIDs(r.UserIDs)
	if err != nil {
		return err
	}
	r.UserIDs = ids

	p, err := ParseBanPeriod(string(r.Period))
	if err != nil {
		return err
	}
	r.Period = p
	return nil
}

// BanStatus, bir kullanıcının o anki ban durumu (login reddi ve /me için).
type BanStatus struct {
	Banned  bool       `json:"banned"`
	EndDate *time.Time `json:"end_date,omitempty"`
}

// maxBulkUsers, tek istekte işlenebilecek kullanıcı sayısı üst sınırı.
const maxBulkUsers = 100

func normalizeUserIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("user_ids must not be empty")
	}
	if len(out) > maxBulkUsers {
		return nil, fmt.Errorf("at most %d users can be selected", maxBulkUsers)
	}
	return out, nil
}
