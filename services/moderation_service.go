package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cameronthecoder/django-ban/database"
	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
	"github.com/cameronthecoder/django-ban/pkg/cache"
	"github.com/cameronthecoder/django-ban/pkg/email"
	"github.com/cameronthecoder/django-ban/pkg/metrics"
	"github.com/cameronthecoder/django-ban/repository"
	"github.com/cameronthecoder/django-ban/ws"
)

// ModerationService, ban ve warn kurallarının tek sahibidir.
//
// Kurallar:
//   - Bir kullanıcının en fazla bir aktif ban'ı olur. Aktif ban varken gelen
//     ban ya mevcut satırı uzatır (kalıcı veya daha geç bitiş) ya da hiçbir
//     şey yapmaz; ikinci satır açılmaz.
//   - Banlı kullanıcıya warn verilemez (sessizce atlanır).
//   - Warn sayısı eşiğe ulaşınca alıcının tüm warn'ları silinir ve yerine
//     kalıcı bir sistem ban'ı (creator = nil) açılır.
//   - Süresi dolmuş ban'lar PurgeExpired ile silinir.
type ModerationService interface {
	// RecordWarn, receiver'a warn kaydeder. creatorID nil olabilir.
	RecordWarn(ctx context.Context, creatorID *string, receiverID string) (*models.WarnOutcome, error)

	// RecordBan, receiver için ban kaydeder veya mevcut aktif ban ile birleştirir.
	// endDate nil → kalıcı. Dönen ban, receiver'ın sonuçtaki tek ban satırıdır.
	RecordBan(ctx context.Context, creatorID *string, receiverID string, endDate *time.Time) (*models.Ban, error)

	// IsBanned, userID'nin now anında aktif ban'ı olup olmadığını döner.
	IsBanned(ctx context.Context, userID string, now time.Time) (bool, error)

	// BanStatus, IsBanned ile aynı kararı ban bitiş tarihiyle birlikte döner.
	BanStatus(ctx context.Context, userID string, now time.Time) (*models.BanStatus, error)

	// PurgeExpired, end_date <= now olan tüm ban'ları siler. Kalıcı ve aktif
	// ban'lara dokunmaz; tekrar çağrılması güvenlidir.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// BanUsers, admin panelindeki "seçili kullanıcıları banla" aksiyonu.
	BanUsers(ctx context.Context, actorID string, req *models.BanUsersRequest) ([]models.Ban, error)

	// WarnUsers, admin panelindeki "seçili kullanıcıları uyar" aksiyonu.
	WarnUsers(ctx context.Context, actorID string, req *models.WarnUsersRequest) ([]models.WarnOutcome, error)

	ListBans(ctx context.Context) ([]models.Ban, error)
	ListWarns(ctx context.Context) ([]models.Warn, error)
	DeleteBan(ctx context.Context, id string) error
	DeleteWarn(ctx context.Context, id string) error
}

// banResult, recordBanTx'in ne yaptığı.
type banResult int

const (
	banCreated banResult = iota
	banUpdated
	banUnchanged
)

// banCacheEntry, kullanıcının en güçlü ban'ının özeti. exists=false → hiç ban yok.
type banCacheEntry struct {
	exists  bool
	endDate *time.Time
}

func (e banCacheEntry) activeAt(now time.Time) bool {
	return e.exists && (e.endDate == nil || e.endDate.After(now))
}

type moderationService struct {
	db          *sql.DB // WithTx için
	banRepo     repository.BanRepository
	warnRepo    repository.WarnRepository
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hub         ws.EventPublisher
	mailer      email.EmailSender // nil → bildirim yok
	banCache    *cache.TTLCache[string, banCacheEntry]
	threshold   int
	now         func() time.Time
	log         *slog.Logger
}

// ModerationDeps, NewModerationService parametreleri.
type ModerationDeps struct {
	DB          *sql.DB
	BanRepo     repository.BanRepository
	WarnRepo    repository.WarnRepository
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Hub         ws.EventPublisher
	Mailer      email.EmailSender

	// WarnsThreshold, eskalasyon eşiği (>= 1).
	WarnsThreshold int

	// BanCacheTTL, ban durumu cache süresi. 0 → cache kapalı.
	BanCacheTTL time.Duration

	// Now, saat kaynağı. nil → time.Now.
	Now func() time.Time
}

// NewModerationService, constructor.
func NewModerationService(deps ModerationDeps) ModerationService {
	s := &moderationService{
		db:          deps.DB,
		banRepo:     deps.BanRepo,
		warnRepo:    deps.WarnRepo,
		userRepo:    deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		hub:         deps.Hub,
		mailer:      deps.Mailer,
		threshold:   deps.WarnsThreshold,
		now:         deps.Now,
		log:         slog.With("component", "moderation"),
	}
	if s.threshold < 1 {
		s.threshold = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	if deps.BanCacheTTL > 0 {
		s.banCache = cache.New[string, banCacheEntry](deps.BanCacheTTL, 10_000)
	}
	return s
}

// ─── Çekirdek operasyonlar ───

func (s *moderationService) RecordBan(ctx context.Context, creatorID *string, receiverID string, endDate *time.Time) (*models.Ban, error) {
	return s.recordBan(ctx, creatorID, receiverID, endDate, metrics.SourceAPI)
}

func (s *moderationService) recordBan(ctx context.Context, creatorID *string, receiverID string, endDate *time.Time, source string) (*models.Ban, error) {
	var (
		ban    *models.Ban
		result banResult
	)

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		ban, result, err = s.recordBanTx(ctx, tx, creatorID, receiverID, endDate)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.BansTotal.WithLabelValues(source).Inc()
	s.afterBan(ban, result)

	return ban, nil
}

// recordBanTx, "aktif ban'ı oku → karar ver → yaz" adımlarını verilen
// transaction içinde yapar. BEGIN IMMEDIATE sayesinde aynı receiver için
// eşzamanlı iki çağrı arasına başka yazıcı giremez.
func (s *moderationService) recordBanTx(ctx context.Context, tx database.TxQuerier, creatorID *string, receiverID string, endDate *time.Time) (*models.Ban, banResult, error) {
	bans := repository.NewSQLiteBanRepo(tx)
	now := s.now()
	endDate = models.NormalizeEndDate(endDate)

	existing, err := bans.GetActiveByReceiver(ctx, receiverID, now)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return nil, 0, err
	}

	if existing == nil {
		ban := &models.Ban{
			CreatorID:  creatorID,
			ReceiverID: receiverID,
			EndDate:    endDate,
			CreatedAt:  now.UTC().Truncate(time.Second),
		}
		if err := bans.Create(ctx, ban); err != nil {
			return nil, 0, err
		}
		created, err := bans.GetByID(ctx, ban.ID)
		if err != nil {
			return nil, 0, err
		}
		return created, banCreated, nil
	}

	if !existing.ExtendedBy(endDate) {
		return existing, banUnchanged, nil
	}

	// Birleştirme: satır yerinde güncellenir, oluşturan son ban'ı veren olur.
	if err := bans.UpdateEndDate(ctx, existing.ID, creatorID, endDate); err != nil {
		return nil, 0, err
	}
	updated, err := bans.GetByID(ctx, existing.ID)
	if err != nil {
		return nil, 0, err
	}
	return updated, banUpdated, nil
}

// afterBan, commit sonrası yan etkiler: metrik, cache, event, oturum iptali, email.
func (s *moderationService) afterBan(ban *models.Ban, result banResult) {
	switch result {
	case banUnchanged:
		metrics.BansMerged.WithLabelValues("unchanged").Inc()
		s.log.Debug("ban request merged without change", "ban_id", ban.ID, "receiver_id", ban.ReceiverID)
		return
	case banUpdated:
		metrics.BansMerged.WithLabelValues("updated").Inc()
		s.hub.BroadcastToAdmins(ws.Event{Op: ws.OpBanUpdate, Data: ban})
	case banCreated:
		s.hub.BroadcastToAdmins(ws.Event{Op: ws.OpBanCreate, Data: ban})
	}

	s.invalidate(ban.ReceiverID)

	s.log.Info("ban recorded",
		"ban_id", ban.ID,
		"receiver_id", ban.ReceiverID,
		"permanent", ban.IsPermanent(),
		"updated", result == banUpdated,
	)

	if !ban.IsActive(s.now()) {
		return
	}

	// Banlı kullanıcının refresh token'ları ve açık bağlantıları kapatılır.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sessionRepo.DeleteByUserID(ctx, ban.ReceiverID); err != nil {
		s.log.Error("failed to revoke sessions", "receiver_id", ban.ReceiverID, "error", err)
	}
	s.hub.DisconnectUser(ban.ReceiverID, "banned")

	s.notify(ban.ReceiverID, func(ctx context.Context, to, username string) error {
		return s.mailer.SendBanNotice(ctx, to, username, ban.EndDate)
	})
}

func (s *moderationService) RecordWarn(ctx context.Context, creatorID *string, receiverID string) (*models.WarnOutcome, error) {
	outcome := &models.WarnOutcome{}
	var (
		warnCount int
		cleared   int64
		ban       *models.Ban
		result    banResult
	)

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		bans := repository.NewSQLiteBanRepo(tx)
		warns := repository.NewSQLiteWarnRepo(tx)
		now := s.now()

		if _, err := bans.GetActiveByReceiver(ctx, receiverID, now); err == nil {
			outcome.Skipped = true
			return nil
		} else if !errors.Is(err, pkg.ErrNotFound) {
			return err
		}

		warn := &models.Warn{
			CreatorID:  creatorID,
			ReceiverID: receiverID,
			CreatedAt:  now.UTC().Truncate(time.Second),
		}
		if err := warns.Create(ctx, warn); err != nil {
			return err
		}

		count, err := warns.CountByReceiver(ctx, receiverID)
		if err != nil {
			return err
		}
		warnCount = count

		if count < s.threshold {
			stored, err := warns.GetByID(ctx, warn.ID)
			if err != nil {
				return err
			}
			outcome.Warn = stored
			return nil
		}

		// Eşik: warn'lar tüketilir, yerine kalıcı sistem ban'ı.
		if cleared, err = warns.DeleteByReceiver(ctx, receiverID); err != nil {
			return err
		}
		ban, result, err = s.recordBanTx(ctx, tx, nil, receiverID, nil)
		if err != nil {
			return fmt.Errorf("failed to escalate warns: %w", err)
		}
		outcome.Ban = ban
		outcome.Escalated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case outcome.Skipped:
		metrics.WarnsSkipped.Inc()
		s.log.Debug("warn skipped, receiver already banned", "receiver_id", receiverID)

	case outcome.Escalated:
		metrics.WarnsTotal.Inc()
		metrics.Escalations.Inc()
		metrics.BansTotal.WithLabelValues(metrics.SourceEscalation).Inc()
		s.hub.BroadcastToAdmins(ws.Event{Op: ws.OpWarnsCleared, Data: ws.WarnsClearedData{ReceiverID: receiverID, Deleted: cleared}})
		s.log.Info("warn threshold reached", "receiver_id", receiverID, "warns_cleared", cleared, "threshold", s.threshold)
		s.afterBan(ban, result)

	default:
		metrics.WarnsTotal.Inc()
		s.hub.BroadcastToAdmins(ws.Event{Op: ws.OpWarnCreate, Data: outcome.Warn})
		s.hub.BroadcastToUser(receiverID, ws.Event{Op: ws.OpWarnCreate, Data: outcome.Warn})
		s.log.Info("warn recorded", "warn_id", outcome.Warn.ID, "receiver_id", receiverID, "count", warnCount)

		s.notify(receiverID, func(ctx context.Context, to, username string) error {
			return s.mailer.SendWarnNotice(ctx, to, username, warnCount, s.threshold)
		})
	}

	return outcome, nil
}

func (s *moderationService) IsBanned(ctx context.Context, userID string, now time.Time) (bool, error) {
	entry, err := s.strongestBan(ctx, userID)
	if err != nil {
		return false, err
	}
	return entry.activeAt(now), nil
}

func (s *moderationService) BanStatus(ctx context.Context, userID string, now time.Time) (*models.BanStatus, error) {
	entry, err := s.strongestBan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !entry.activeAt(now) {
		return &models.BanStatus{}, nil
	}
	return &models.BanStatus{Banned: true, EndDate: entry.endDate}, nil
}

// strongestBan, kullanıcının en güçlü ban'ını cache'ten ya da DB'den okur.
// Cache zamandan bağımsız bir özet tuttuğu için her okumada now ile yeniden
// değerlendirilir; süreli ban'lar cache'te olsa da tam zamanında biter.
func (s *moderationService) strongestBan(ctx context.Context, userID string) (banCacheEntry, error) {
	if s.banCache != nil {
		if entry, ok := s.banCache.Get(userID); ok {
			return entry, nil
		}
	}

	var entry banCacheEntry
	ban, err := s.banRepo.GetStrongestByReceiver(ctx, userID)
	switch {
	case err == nil:
		entry = banCacheEntry{exists: true, endDate: ban.EndDate}
	case errors.Is(err, pkg.ErrNotFound):
	default:
		return banCacheEntry{}, err
	}

	if s.banCache != nil {
		s.banCache.Set(userID, entry)
	}
	return entry, nil
}

func (s *moderationService) invalidate(userID string) {
	if s.banCache != nil {
		s.banCache.Delete(userID)
	}
}

func (s *moderationService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.banRepo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		metrics.BansPurged.Add(float64(n))
		if s.banCache != nil {
			s.banCache.Clear()
		}
		s.hub.BroadcastToAdmins(ws.Event{Op: ws.OpBansPurged, Data: ws.PurgedData{Deleted: n}})
	}

	s.log.Info("expired bans purged", "deleted", n, "before", now.UTC())
	return n, nil
}

// ─── Admin aksiyonları ───

func (s *moderationService) BanUsers(ctx context.Context, actorID string, req *models.BanUsersRequest) ([]models.Ban, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}
	if err := s.checkTargets(ctx, actorID, req.UserIDs, "ban"); err != nil {
		return nil, err
	}

	endDate := req.Period.EndDate(s.now())
	result := make([]models.Ban, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		ban, err := s.recordBan(ctx, &actorID, userID, endDate, metrics.SourceAdmin)
		if err != nil {
			return nil, err
		}
		result = append(result, *ban)
	}

	return result, nil
}

func (s *moderationService) WarnUsers(ctx context.Context, actorID string, req *models.WarnUsersRequest) ([]models.WarnOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}
	if err := s.checkTargets(ctx, actorID, req.UserIDs, "warn"); err != nil {
		return nil, err
	}

	result := make([]models.WarnOutcome, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		outcome, err := s.RecordWarn(ctx, &actorID, userID)
		if err != nil {
			return nil, err
		}
		result = append(result, *outcome)
	}

	return result, nil
}

// checkTargets, hedeflerin var olduğunu ve aktörün kendisini içermediğini
// kontrol eder. Hiçbir kayıt yazılmadan önce çağrılır.
func (s *moderationService) checkTargets(ctx context.Context, actorID string, userIDs []string, action string) error {
	for _, id := range userIDs {
		if id == actorID {
			return fmt.Errorf("%w: you cannot %s yourself", pkg.ErrBadRequest, action)
		}
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return fmt.Errorf("%w: user %s", pkg.ErrNotFound, id)
			}
			return err
		}
	}
	return nil
}

func (s *moderationService) ListBans(ctx context.Context) ([]models.Ban, error) {
	return s.banRepo.List(ctx)
}

func (s *moderationService) ListWarns(ctx context.Context) ([]models.Warn, error) {
	return s.warnRepo.List(ctx)
}

func (s *moderationService) DeleteBan(ctx context.Context, id string) error {
	ban, err := s.banRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.banRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ban.ReceiverID)
	s.hub.BroadcastToAdmins(ws.Event{Op: ws.OpBanDelete, Data: ws.IDData{ID: id}})
	s.log.Info("ban deleted", "ban_id", id, "receiver_id", ban.ReceiverID)
	return nil
}

func (s *moderationService) DeleteWarn(ctx context.Context, id string) error {
	if err := s.warnRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.hub.BroadcastToAdmins(ws.Event{Op: ws.OpWarnDelete, Data: ws.IDData{ID: id}})
	s.log.Info("warn deleted", "warn_id", id)
	return nil
}

// notify, alıcının email'i varsa bildirimi arka planda gönderir.
// Hata sadece loglanır; moderasyon işlemini etkilemez.
func (s *moderationService) notify(userID string, send func(ctx context.Context, to, username string) error) {
	if s.mailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			s.log.Warn("notification skipped, user lookup failed", "user_id", userID, "error", err)
			return
		}
		if user.Email == nil {
			return
		}
		if err := send(ctx, *user.Email, user.Username); err != nil {
			s.log.Warn("failed to send notification", "user_id", userID, "error", err)
		}
	}()
}
