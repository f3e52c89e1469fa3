package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/authmify/internal/application"
)

type fakeIndexer struct {
	docs map[string]any
	err  error
}

func (f *fakeIndexer) Index(_ context.Context, id string, doc any) error {
	if f.err != nil {
		return f.err
	}
	if f.docs == nil {
		f.docs = map[string]any{}
	}
	f.docs[id] = doc
	return nil
}

type sentMail struct{ to, subject, text, html string }

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func eventBody(t *testing.T, typ application.EventType) []byte {
	t.Helper()
	b, err := json.Marshal(application.AuthEvent{
		ID:         "ev-1",
		Type:       typ,
		UserID:     "u-1",
		Email:      "a@example.com",
		Method:     "password",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestHandle_IndexesAndSends(t *testing.T) {
	idx, snd := &fakeIndexer{}, &fakeSender{}
	p := &Processor{Indexer: idx, Sender: snd, AppName: "Authmify", Logger: quiet()}

	for _, typ := range []application.EventType{
		application.EventUserRegistered,
		application.EventUserLoggedIn,
		application.EventBiometricBound,
	} {
		require.NoError(t, p.Handle(context.Background(), eventBody(t, typ)), typ)
	}

	require.Len(t, snd.sent, 3)
	assert.Contains(t, snd.sent[0].subject, "welcome")
	assert.Contains(t, snd.sent[1].text, "password")
	assert.Contains(t, snd.sent[2].subject, "biometric")
	for _, m := range snd.sent {
		assert.Equal(t, "a@example.com", m.to)
		assert.NotEmpty(t, m.html)
	}
	ev, ok := idx.docs["ev-1"].(application.AuthEvent)
	require.True(t, ok)
	assert.Equal(t, "u-1", ev.UserID)
}

func TestHandle_Malformed(t *testing.T) {
	p := &Processor{Logger: quiet()}

	for _, body := range []string{`not json`, `{}`, `{"id":"x","type":"user.deleted"}`} {
		err := p.Handle(context.Background(), []byte(body))
		assert.ErrorIs(t, err, ErrMalformed, body)
	}
}

func TestHandle_OptionalCollaborators(t *testing.T) {
	p := &Processor{Logger: quiet()}
	assert.NoError(t, p.Handle(context.Background(), eventBody(t, application.EventUserLoggedIn)))
}

func TestHandle_FailuresAreRetryable(t *testing.T) {
	p := &Processor{Indexer: &fakeIndexer{err: errors.New("es down")}, Logger: quiet()}
	err := p.Handle(context.Background(), eventBody(t, application.EventUserRegistered))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)

	p = &Processor{Sender: &fakeSender{err: errors.New("mailgun 500")}, Logger: quiet()}
	err = p.Handle(context.Background(), eventBody(t, application.EventUserRegistered))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
}

type ackRecord struct {
	tag     uint64
	acked   bool
	requeue bool
}

type fakeAcker struct {
	mu      sync.Mutex
	records []ackRecord
}

func (f *fakeAcker) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ackRecord{tag: tag, acked: true})
	return nil
}

func (f *fakeAcker) Nack(tag uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ackRecord{tag: tag, requeue: requeue})
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func TestRun_AcksAndNacks(t *testing.T) {
	acker := &fakeAcker{}
	snd := &fakeSender{}
	p := &Processor{Sender: snd, Logger: quiet()}

	msgs := make(chan amqp.Delivery, 4)
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: eventBody(t, application.EventUserLoggedIn)}
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte("junk")}
	close(msgs)

	require.NoError(t, p.Run(context.Background(), msgs))

	assert.Equal(t, []ackRecord{
		{tag: 1, acked: true},
		{tag: 2, requeue: false},
	}, acker.records)
	assert.Len(t, snd.sent, 1)
}

func TestRun_RequeuesOnceOnTransientFailure(t *testing.T) {
	acker := &fakeAcker{}
	p := &Processor{Sender: &fakeSender{err: errors.New("timeout")}, Logger: quiet()}

	msgs := make(chan amqp.Delivery, 2)
	body := eventBody(t, application.EventUserRegistered)
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: body}
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: body, Redelivered: true}
	close(msgs)

	require.NoError(t, p.Run(context.Background(), msgs))
	assert.Equal(t, []ackRecord{
		{tag: 1, requeue: true},
		{tag: 2, requeue: false},
	}, acker.records)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&Processor{Logger: quiet()}).Run(ctx, make(chan amqp.Delivery))
	assert.ErrorIs(t, err, context.Canceled)
}
