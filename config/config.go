// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
//
// Öncelik sırası (sonraki öncekini ezer):
//  1. Varsayılan değerler
//  2. CONFIG_FILE ile verilen YAML dosyası (opsiyonel)
//  3. .env dosyası + gerçek environment variable'lar
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Moderation ModerationConfig `yaml:"moderation"`
	Login      LoginConfig      `yaml:"login"`
	Log        LogConfig        `yaml:"log"`
	Email      EmailConfig      `yaml:"email"`
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite dosya yolu (ör: ./data/ban.db)
}

// JWTConfig, JWT token ayarları.
type JWTConfig struct {
	Secret             string `yaml:"secret"`               // Token imzalama anahtarı (gizli tutulmalı)
	AccessTokenExpiry  int    `yaml:"access_expiry_minutes"` // Dakika cinsinden (varsayılan: 15)
	RefreshTokenExpiry int    `yaml:"refresh_expiry_days"`   // Gün cinsinden (varsayılan: 7)
}

// ModerationConfig, ban/warn kuralları.
type ModerationConfig struct {
	// WarnsThreshold: bir kullanıcı bu sayıda warn'a ulaşınca warn'lar silinir
	// ve yerine kalıcı bir ban oluşturulur.
	WarnsThreshold int `yaml:"warns_threshold"`

	// SweepIntervalMinutes: süresi dolmuş ban'ların arka planda temizlenme aralığı.
	// 0 → arka plan temizliği kapalı (sadece CLI / admin endpoint).
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`

	// BanCacheTTLSeconds: kullanıcı başına ban durumu cache süresi.
	BanCacheTTLSeconds int `yaml:"ban_cache_ttl_seconds"`
}

// LoginConfig, login brute-force koruması.
type LoginConfig struct {
	MaxAttempts   int `yaml:"max_attempts"`
	WindowSeconds int `yaml:"window_seconds"`
}

// LogConfig, log seviyesi ve dosya çıktısı.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Boşsa sadece stdout
}

// EmailConfig, Resend ile ban/warn bildirim email'leri (opsiyonel).
type EmailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	FromEmail    string `yaml:"from"`
	AppURL       string `yaml:"app_url"`
}

// Default, varsayılan değerlerle dolu bir Config döner.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           9090,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{Path: "./data/ban.db"},
		JWT: JWTConfig{
			AccessTokenExpiry:  15,
			RefreshTokenExpiry: 7,
		},
		Moderation: ModerationConfig{
			WarnsThreshold:       3,
			SweepIntervalMinutes: 60,
			BanCacheTTLSeconds:   30,
		},
		Login: LoginConfig{
			MaxAttempts:   5,
			WindowSeconds: 120,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load, Config'i varsayılanlar → YAML dosyası → environment sırasıyla oluşturur.
// .env dosyası varsa önce onu yükler; yoksa sessizce devam eder.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile, YAML dosyasını mevcut Config'in üzerine okur.
// Dosyada olmayan alanlar varsayılan değerlerini korur.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv, set edilmiş environment variable'ları Config'e yazar.
func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Database.Path = getEnv("DATABASE_PATH", c.Database.Path)
	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Email.ResendAPIKey = getEnv("RESEND_API_KEY", c.Email.ResendAPIKey)
	c.Email.FromEmail = getEnv("RESEND_FROM", c.Email.FromEmail)
	c.Email.AppURL = getEnv("APP_URL", c.Email.AppURL)

	if origins, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(origins)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SERVER_PORT", &c.Server.Port},
		{"JWT_ACCESS_EXPIRY_MINUTES", &c.JWT.AccessTokenExpiry},
		{"JWT_REFRESH_EXPIRY_DAYS", &c.JWT.RefreshTokenExpiry},
		{"WARNS_THRESHOLD", &c.Moderation.WarnsThreshold},
		{"BAN_SWEEP_INTERVAL_MINUTES", &c.Moderation.SweepIntervalMinutes},
		{"BAN_CACHE_TTL_SECONDS", &c.Moderation.BanCacheTTLSeconds},
		{"LOGIN_MAX_ATTEMPTS", &c.Login.MaxAttempts},
		{"LOGIN_WINDOW_SECONDS", &c.Login.WindowSeconds},
	}
	for _, item := range ints {
		raw, ok := os.LookupEnv(item.key)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", item.key, err)
		}
		*item.dst = v
	}

	return nil
}

// Validate, zorunlu ve aralık kontrolü gereken alanları doğrular.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.Moderation.WarnsThreshold < 1 {
		return fmt.Errorf("WARNS_THRESHOLD must be at least 1, got %d", c.Moderation.WarnsThreshold)
	}
	if c.Moderation.SweepIntervalMinutes < 0 {
		return fmt.Errorf("BAN_SWEEP_INTERVAL_MINUTES must not be negative")
	}
	if c.Login.MaxAttempts < 1 || c.Login.WindowSeconds < 1 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS and LOGIN_WINDOW_SECONDS must be positive")
	}
	return nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
