// Package services содержит сервис отправки писем сброса пароля.
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/smtp"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const (
	// DefaultAttempts число попыток доставки письма.
	DefaultAttempts = 3
	// DefaultBackoff пауза между попытками.
	DefaultBackoff = 2 * time.Second
)

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Password Reset Request</h2>
  <p>You requested a password reset for your Pharmacy Management System account.</p>
  <p>Click the link below to set a new password. The link is valid for one hour.</p>
  <p><a href="{{.URL}}" style="background:#2563eb;color:#fff;padding:10px 16px;text-decoration:none;border-radius:4px;">Reset password</a></p>
  <p>If the button does not work, copy this address into your browser:<br>{{.URL}}</p>
  <p>If you did not request a reset, you can ignore this email.</p>
</body>
</html>`))

// SenderService отправляет письма через SMTP с повторными попытками.
type SenderService struct {
	transport   smtp.Dialer
	log         *slog.Logger
	frontendURL string
	fromName    string
	attempts    int
	backoff     time.Duration
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.Dialer, log *slog.Logger, frontendURL, fromName string) *SenderService {
	return &SenderService{
		transport:   transport,
		log:         log,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		fromName:    fromName,
		attempts:    DefaultAttempts,
		backoff:     DefaultBackoff,
	}
}

// ResetURL строит ссылку на страницу сброса пароля во фронтенде.
func (s *SenderService) ResetURL(token string) string {
	return s.frontendURL + "/reset-password/" + token
}

// SendResetPasswordEmail отправляет письмо со ссылкой сброса пароля.
// Делает до attempts попыток с фиксированной паузой backoff; после последней
// неудачи возвращает ошибку, оборачивающую models.ErrDeliveryFailed.
func (s *SenderService) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	const op = "services.sender.SendResetPasswordEmail"
	log := s.log.With(slog.String("op", op), sl.Email(email))

	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct{ URL string }{URL: s.ResetURL(token)}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		lastErr = s.sendEmail(ctx, email, "Password Reset Request", body.String())
		if lastErr == nil {
			log.Info("reset email sent", slog.Int("attempt", attempt))
			return nil
		}
		log.Warn("email attempt failed", slog.Int("attempt", attempt), sl.Err(lastErr))
		if attempt == s.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w: %w", op, models.ErrDeliveryFailed, ctx.Err())
		case <-time.After(s.backoff):
		}
	}
	log.Error("all email attempts failed", slog.Int("attempts", s.attempts))
	return fmt.Errorf("%s: %w: %w", op, models.ErrDeliveryFailed, lastErr)
}

func (s *SenderService) buildMessage(to, subject, htmlBody string) string {
	from := mail.Address{Name: s.fromName, Address: s.transport.FromAddress()}
	return strings.Join([]string{
		"From: " + from.String(),
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"Date: " + time.Now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")
}

// connect ждёт соединения не дольше, чем живёт ctx, даже если транспорт
// контекст не учитывает. Опоздавшее соединение закрывается в фоне.
func (s *SenderService) connect(ctx context.Context) (smtp.Client, error) {
	type result struct {
		client smtp.Client
		err    error
	}
	done := make(chan result, 1)
	go func() {
		client, err := s.transport.Connect(ctx)
		done <- result{client: client, err: err}
	}()

	select {
	case r := <-done:
		return r.client, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.client != nil {
				_ = r.client.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

func (s *SenderService) sendEmail(ctx context.Context, to, subject, htmlBody string) error {
	msg := s.buildMessage(to, subject, htmlBody)

	client, err := s.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(s.transport.FromAddress()); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	if err = client.Quit(); err != nil {
		s.log.Warn("failed to quit SMTP client", sl.Err(err))
	}
	return nil
}
