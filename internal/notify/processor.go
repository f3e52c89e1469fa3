// Package notify consumes auth events: it records them in the search index
// and emails the account owner.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/authmify/internal/application"
	"github.com/oksasatya/authmify/pkg/mailer"
	"github.com/oksasatya/authmify/pkg/mailer/templates"
)

// ErrMalformed marks messages that can never be processed and must not be requeued.
var ErrMalformed = errors.New("malformed event")

type Indexer interface {
	Index(ctx context.Context, id string, doc any) error
}

type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type Processor struct {
	Indexer Indexer
	Sender  Sender
	AppName string
	Logger  *logrus.Logger
}

var templateFor = map[application.EventType]string{
	application.EventUserRegistered: templates.Welcome,
	application.EventUserLoggedIn:   templates.LoginNotification,
	application.EventBiometricBound: templates.BiometricEnabled,
}

// Handle processes one message body. Indexer and Sender are optional.
func (p *Processor) Handle(ctx context.Context, body []byte) error {
	var ev application.AuthEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return fmt.Errorf("%w: missing id or type", ErrMalformed)
	}
	tpl, known := templateFor[ev.Type]
	if !known {
		return fmt.Errorf("%w: unknown type %q", ErrMalformed, ev.Type)
	}

	if p.Indexer != nil {
		if err := p.Indexer.Index(ctx, ev.ID, ev); err != nil {
			return err
		}
	}

	if p.Sender == nil || ev.Email == "" {
		return nil
	}
	job, err := mailer.NewEmailJob(tpl, ev.Email, templates.EmailData{
		AppName: p.AppName,
		Email:   ev.Email,
		Method:  ev.Method,
		TimeAt:  ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrMalformed, tpl, err)
	}
	if err := p.Sender.Send(ctx, job.To, job.Subject, job.Text, job.HTML); err != nil {
		return fmt.Errorf("send %s: %w", tpl, err)
	}
	p.log().WithFields(logrus.Fields{"event_id": ev.ID, "type": ev.Type}).Info("notification sent")
	return nil
}

func (p *Processor) log() *logrus.Logger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}
