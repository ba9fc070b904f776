package models

import "time"

// Warn, bir kullanıcıya verilmiş uyarı.
// Warn'lar birikir; eşiğe ulaşıldığında alıcının tüm warn'ları silinip
// yerine kalıcı bir sistem ban'ı açılır.
type Warn struct {
	ID               string    `json:"id"`
	CreatorID        *string   `json:"creator_id"`
	CreatorUsername  *string   `json:"creator_username,omitempty"`
	ReceiverID       string    `json:"receiver_id"`
	ReceiverUsername string    `json:"receiver_username,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// WarnOutcome, RecordWarn'ın sonucu. Üç durumdan biri:
//   - Skipped: alıcı zaten banlı, hiçbir şey yazılmadı
//   - Warn dolu, Ban nil: warn kaydedildi, eşiğe ulaşılmadı
//   - Ban dolu: eşiğe ulaşıldı, warn'lar silindi, Ban sonuç ban'ı
type WarnOutcome struct {
	Warn      *Warn `json:"warn,omitempty"`
	Ban       *Ban  `json:"ban,omitempty"`
	Skipped   bool  `json:"skipped"`
	Escalated bool  `json:"escalated"`
}

// WarnUsersRequest, seçili kullanıcıları uyarma isteği.
type WarnUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// Validate, isteği kontrol eder ve tekrarlanan ID'leri temizler.
func (r *WarnUsersRequest) Validate() error {
	ids, err := normalizeUserIDs(r.UserIDs)
	if err != nil {
		return err
	}
	r.UserIDs = ids
	return nil
}
