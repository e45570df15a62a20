package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para envio de correos de cuenta.
// La URL apunta al endpoint de confirmacion correspondiente con el token embebido.
type Sender interface {
	SendActivationEmail(ctx context.Context, toEmail, username, confirmURL string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, username, confirmURL string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendActivationEmail(_ context.Context, _, _, _ string) error {
	return s.err()
}

func (s *disabledSender) SendPasswordResetEmail(_ context.Context, _, _, _ string) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
