// Package email, moderasyon bildirim email'lerini gönderir.
//
// Service katmanı EmailSender interface'ine bağımlıdır; şu anki
// implementasyon Resend API kullanır. Resend yapılandırılmamışsa
// service'e nil verilir ve bildirim gönderilmez.
package email

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/resend/resend-go/v3"
)

// EmailSender, ban/warn bildirimleri için interface.
type EmailSender interface {
	// SendBanNotice, kullanıcıya hesabının banlandığını bildirir.
	// endDate nil → kalıcı ban.
	SendBanNotice(ctx context.Context, toEmail, username string, endDate *time.Time) error

	// SendWarnNotice, kullanıcıya uyarı aldığını ve eşiğe kalan hakkını bildirir.
	SendWarnNotice(ctx context.Context, toEmail, username string, warnCount, threshold int) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
	appURL    string
}

// NewResendSender, Resend API client'ı ile EmailSender oluşturur.
// fromEmail Resend'de doğrulanmış bir domain altında olmalıdır.
func NewResendSender(apiKey, fromEmail, appURL string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

func (s *resendSender) SendBanNotice(ctx context.Context, toEmail, username string, endDate *time.Time) error {
	return s.send(ctx, toEmail, "Your account has been banned", BanNoticeBody(username, endDate))
}

func (s *resendSender) SendWarnNotice(ctx context.Context, toEmail, username string, warnCount, threshold int) error {
	return s.send(ctx, toEmail, "You have received a warning", WarnNoticeBody(username, warnCount, threshold))
}

func (s *resendSender) send(ctx context.Context, to, subject, body string) error {
	footer := ""
	if s.appURL != "" {
		footer = fmt.Sprintf(`<br><br><a href="%s">%s</a>`, html.EscapeString(s.appURL), html.EscapeString(s.appURL))
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    `<!DOCTYPE html><html><body style="font-family:Arial,Helvetica,sans-serif;">` + body + footer + `</body></html>`,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send %q email: %w", subject, err)
	}

	return nil
}

// BanNoticeBody, ban bildirimi HTML gövdesi.
func BanNoticeBody(username string, endDate *time.Time) string {
	until := "permanently"
	if endDate != nil {
		until = "until " + endDate.UTC().Format("2006-01-02 15:04 MST")
	}

	return fmt.Sprintf(
		"Hello %s,<br><br>Your account has been banned %s. You will not be able to sign in while the ban is active.",
		html.EscapeString(username), until,
	)
}

// WarnNoticeBody, warn bildirimi HTML gövdesi.
func WarnNoticeBody(username string, warnCount, threshold int) string {
	return fmt.Sprintf(
		"Hello %s,<br><br>You have received a warning (%d of %d). Reaching %d warnings results in a permanent ban.",
		html.EscapeString(username), warnCount, threshold, threshold,
	)
}
