package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/Majedzeyad/cancare-api/internal/config"
)

type Service interface {
	SendOverrideDecision(ctx context.Context, to, medication, dosage, status string) error
	SendNewMessage(ctx context.Context, to, senderName, chatName string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendOverrideDecision(ctx context.Context, to, medication, dosage, status string) error {
	subject := fmt.Sprintf("Override request %s", status)
	content := fmt.Sprintf(
		"Your dosage override request for %s (%s) has been %s.",
		medication, dosage, status,
	)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *service) SendNewMessage(ctx context.Context, to, senderName, chatName string) error {
	subject := fmt.Sprintf("New message from %s", senderName)
	content := fmt.Sprintf("%s sent a new message in %s.", senderName, chatName)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *service) SendCustom(ctx context.Context, to, subject, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
