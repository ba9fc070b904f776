// Package ws, moderasyon olaylarının gerçek zamanlı dağıtımını sağlar.
//
//   - Hub: tüm bağlantıları userID bazında tutar
//   - Client: tek bir WebSocket bağlantısı (ReadPump + WritePump)
//   - Event: client-server arası mesaj formatı
//
// Admin bağlantıları tüm ban/warn olaylarını alır. Banlanan kullanıcının
// açık bağlantılarına force_disconnect gönderilip bağlantılar kapatılır.
package ws

// Event, WebSocket üzerinden iletilen mesaj.
// Seq her outbound event'te artar; client kaçırdığı event'i buradan anlar.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server
const (
	OpHeartbeat = "heartbeat" // client ~30sn'de bir gönderir
)

// Server → Client
const (
	OpReady        = "ready"
	OpHeartbeatAck = "heartbeat_ack"

	OpBanCreate    = "ban_create"    // yeni ban satırı
	OpBanUpdate    = "ban_update"    // mevcut aktif ban uzatıldı
	OpBanDelete    = "ban_delete"    // ban kaldırıldı (unban)
	OpBansPurged   = "bans_purged"   // süresi dolmuş ban'lar temizlendi
	OpWarnCreate   = "warn_create"   // yeni warn
	OpWarnDelete   = "warn_delete"   // tek warn silindi
	OpWarnsCleared = "warns_cleared" // eşik aşıldı, alıcının warn'ları silindi

	OpForceDisconnect = "force_disconnect" // bağlantı sunucu tarafından kapatılıyor
)

// ReadyData, bağlantı kurulunca gönderilen ilk payload.
type ReadyData struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

// ForceDisconnectData, force_disconnect payload'ı.
type ForceDisconnectData struct {
	Reason string `json:"reason"`
}

// WarnsClearedData, warns_cleared payload'ı.
type WarnsClearedData struct {
	ReceiverID string `json:"receiver_id"`
	Deleted    int64  `json:"deleted"`
}

// IDData, sadece id taşıyan silme event'leri için.
type IDData struct {
	ID string `json:"id"`
}

// PurgedData, bans_purged payload'ı.
type PurgedData struct {
	Deleted int64 `json:"deleted"`
}
