package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hackgods/appointment-booking/internal/notify"
)

type stubNotifier struct {
	got []notify.Message
	err error
}

func (s *stubNotifier) Send(_ context.Context, msg notify.Message) error {
	s.got = append(s.got, msg)
	return s.err
}

func TestDeliver(t *testing.T) {
	n := &stubNotifier{}
	payload := []byte(`{"to":"a@x.com","subject":"Account Activation","body":"hi"}`)

	deliver(context.Background(), n, payload, time.Second, zap.NewNop())

	if len(n.got) != 1 || n.got[0].To != "a@x.com" || n.got[0].Subject != "Account Activation" {
		t.Errorf("delivered: %+v", n.got)
	}
}

func TestDeliverMalformedPayload(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := &stubNotifier{}

	deliver(context.Background(), n, []byte("garbage"), time.Second, zap.New(core))

	if len(n.got) != 0 {
		t.Error("malformed payload was sent")
	}
	if logs.FilterMessage("discarding malformed message").Len() != 1 {
		t.Error("expected malformed payload to be logged")
	}
}

func TestDeliverFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := &stubNotifier{err: errors.New("535 bad credentials")}

	deliver(context.Background(), n, []byte(`{"to":"a@x.com"}`), time.Second, zap.New(core))

	if logs.FilterMessage("notification failed").Len() != 1 {
		t.Error("expected failure to be logged")
	}
}
