// Пакет mailer — отправка ключей MCP пользователям по электронной почте.
// Шаблоны письма хранятся в настройках модуля и содержат плейсхолдеры
// вида {$a->firstname}.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// ErrDisabled — SMTP не настроен, письмо не отправлено.
var ErrDisabled = errors.New("отправка почты не настроена")

// ErrNoRecipient — у пользователя нет адреса электронной почты.
var ErrNoRecipient = errors.New("не указан адрес получателя")

// Message — письмо.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender — отправитель писем.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// KeyData — значения плейсхолдеров шаблона письма с ключом.
type KeyData struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	MCPKey    string
	MCPURL    string
}

// Render подставляет значения в шаблон. Неизвестные плейсхолдеры остаются как есть.
func Render(template string, d KeyData) string {
	return strings.NewReplacer(
		"{$a->firstname}", d.FirstName,
		"{$a->lastname}", d.LastName,
		"{$a->username}", d.Username,
		"{$a->email}", d.Email,
		"{$a->mcpkey}", d.MCPKey,
		"{$a->mcpurl}", d.MCPURL,
	).Replace(template)
}

// KeyMessage собирает письмо с ключом по шаблонам темы и текста.
func KeyMessage(subjectTpl, bodyTpl string, d KeyData) Message {
	return Message{
		To:      d.Email,
		Subject: Render(subjectTpl, d),
		Body:    Render(bodyTpl, d),
	}
}

// SMTPConfig — параметры SMTP-релея.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender отправляет письма через SMTP-релей.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *slog.Logger
	// send — net/smtp.SendMail, подменяется в тестах
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender создаёт отправителя. Пустой Host — почта отключена,
// Send возвращает ErrDisabled.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "mailer")),
		send:   smtp.SendMail,
	}
}

// Send отправляет письмо.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.Host == "" {
		s.logger.Warn("SMTP не настроен, письмо не отправлено", slog.String("to", msg.To))
		return ErrDisabled
	}
	to := sanitizeHeader(msg.To)
	if to == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, []string{to}, buildMessage(s.cfg.From, to, msg, time.Now())); err != nil {
		return fmt.Errorf("отправка письма %s: %w", to, err)
	}

	s.logger.Info("Письмо с ключом отправлено", slog.String("to", to))
	return nil
}

// buildMessage формирует письмо в формате RFC 5322 (text/plain, UTF-8).
func buildMessage(from, to string, msg Message, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + sanitizeHeader(from) + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", sanitizeHeader(msg.Subject)) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// sanitizeHeader убирает переводы строк из значения заголовка.
func sanitizeHeader(v string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", "", "\n", " ").Replace(v))
}
