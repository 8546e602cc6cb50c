// Package usecase delivers contact-form messages to the site owner.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	// ErrInvalidSender is returned when the submitted "from" is not a single bare address.
	ErrInvalidSender = errors.New("invalid sender address")

	// ErrInvalidSubject is returned for subjects that would break the header.
	ErrInvalidSubject = errors.New("invalid subject")
)

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ContactInput is a validated contact form.
type ContactInput struct {
	FromEmail string
	Subject   string
	Message   string
}

type contactUsecase struct {
	mailer    Mailer
	recipient string
}

// NewContactUsecase creates the contact usecase sending every message to recipient.
func NewContactUsecase(mailer Mailer, recipient string) *contactUsecase {
	return &contactUsecase{mailer: mailer, recipient: recipient}
}

// Send mails the form to the recipient with the visitor's address as sender. Addresses and
// subject are checked before the mailer is called.
func (u *contactUsecase) Send(ctx context.Context, in ContactInput) error {
	from := strings.TrimSpace(in.FromEmail)
	addr, err := mail.ParseAddress(from)
	if err != nil || addr.Address != from {
		return ErrInvalidSender
	}
	if strings.ContainsAny(in.Subject, "\r\n") {
		return ErrInvalidSubject
	}

	msg := Message{
		From:    addr.Address,
		To:      u.recipient,
		Subject: in.Subject,
		Body:    in.Message,
	}
	if err := u.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}
	return nil
}
