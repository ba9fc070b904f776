// Package services, business logic katmanını barındırır.
//
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır:
//   - Şifre hash'leme ve JWT üretimi (AuthService)
//   - Ban/warn kuralları (ModerationService)
//   - Admin listeleri (UserAdminService)
//
// Service http.Request/Response bilmez, doğrudan SQL çalıştırmaz.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
	"github.com/cameronthecoder/django-ban/pkg/metrics"
	"github.com/cameronthecoder/django-ban/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService interface'i. Handler ve middleware bu interface'e bağımlıdır.
type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error)

	// Login, kimlik bilgileri doğruysa ve kullanıcının aktif ban'ı yoksa
	// token çifti döner. Banlı kullanıcı için *pkg.BannedError döner.
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)

	RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)

	// Me, kullanıcıyı ve o anki ban durumunu döner.
	Me(ctx context.Context, userID string) (*MeResponse, error)
}

// AuthTokens, login/register sonrası dönen token çifti.
type AuthTokens struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// MeResponse, GET /api/users/me cevabı.
type MeResponse struct {
	User models.User      `json:"user"`
	Ban  models.BanStatus `json:"ban"`
}

// BanStatusChecker, AuthService'in ban kontrolü için ihtiyaç duyduğu dar interface.
// ModerationService bunu karşılar.
type BanStatusChecker interface {
	BanStatus(ctx context.Context, userID string, now time.Time) (*models.BanStatus, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	bans        BanStatusChecker
	jwtSecret   []byte
	accessExp   time.Duration
	refreshExp  time.Duration
	bcryptCost  int
	now         func() time.Time
	log         *slog.Logger
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	bans BanStatusChecker,
	jwtSecret string,
	accessExpMinutes int,
	refreshExpDays int,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		bans:        bans,
		jwtSecret:   []byte(jwtSecret),
		accessExp:   time.Duration(accessExpMinutes) * time.Minute,
		refreshExp:  time.Duration(refreshExpDays) * 24 * time.Hour,
		bcryptCost:  12,
		now:         time.Now,
		log:         slog.With("component", "auth"),
	}
}

// Register, yeni kullanıcı kaydı oluşturur. İlk kayıt olan kullanıcı admin olur.
func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	var email *string
	if req.Email != "" {
		email = &req.Email
	}

	user := &models.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      count == 0,
		Language:     req.Language,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)

	return s.generateTokens(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			metrics.LoginRejected.WithLabelValues("credentials").Inc()
			return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.LoginRejected.WithLabelValues("credentials").Inc()
		return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
	}

	// Ban kontrolü şifre doğrulandıktan sonra yapılır; yanlış şifreyle
	// hesabın banlı olup olmadığı öğrenilemez.
	if err := s.checkBan(ctx, user.ID); err != nil {
		metrics.LoginRejected.WithLabelValues("banned").Inc()
		s.log.Info("login rejected, account banned", "user_id", user.ID)
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// RefreshToken, refresh token'ı tek kullanımlık olarak yeni bir çiftle değiştirir.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if s.now().After(session.ExpiresAt) {
		if delErr := s.sessionRepo.DeleteByID(ctx, session.ID); delErr != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", delErr)
		}
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to delete old session: %w", err)
	}

	if err := s.checkBan(ctx, session.UserID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// Logout, refresh token'ı iptal eder. Bilinmeyen token hata değildir.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	return s.sessionRepo.DeleteByID(ctx, session.ID)
}

// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
// Ban kontrolü yapmaz; o iş middleware'dedir.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*MeResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	status, err := s.bans.BanStatus(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	return &MeResponse{User: *user, Ban: *status}, nil
}

// ─── Private Helpers ───

func (s *authService) checkBan(ctx context.Context, userID string) error {
	status, err := s.bans.BanStatus(ctx, userID, s.now())
	if err != nil {
		return fmt.Errorf("failed to check ban status: %w", err)
	}
	if status.Banned {
		return &pkg.BannedError{EndDate: status.EndDate}
	}
	return nil
}

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*AuthTokens, error) {
	now := s.now()
	accessClaims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "django-ban",
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshString := hex.EncodeToString(refreshBytes)

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshString,
		ExpiresAt:    now.Add(s.refreshExp),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	user.PasswordHash = ""

	return &AuthTokens{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		User:         *user,
	}, nil
}
