package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestOTPMessage(t *testing.T) {
	msg := OTPMessage("ann@example.com", "012345", 15*time.Minute)

	if msg.To != "ann@example.com" {
		t.Errorf("To = %q, want ann@example.com", msg.To)
	}
	if !strings.Contains(msg.Body, "012345") {
		t.Errorf("Body does not contain the code: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "15m0s") {
		t.Errorf("Body does not contain the ttl: %q", msg.Body)
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := sender.Send(context.Background(), Message{To: "ann@example.com", Subject: "hi", Body: "code"}); err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "to=ann@example.com") {
		t.Errorf("log output missing recipient: %q", buf.String())
	}
}

func TestSendersRejectMissingRecipient(t *testing.T) {
	senders := []Sender{
		NewLogSender(nil),
		NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"}),
	}
	for _, s := range senders {
		if err := s.Send(context.Background(), Message{Subject: "x"}); err != ErrNoRecipient {
			t.Errorf("%T.Send() error = %v, want ErrNoRecipient", s, err)
		}
	}
}

func TestSMTPSenderUnreachableHost(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "no-reply@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sender.Send(ctx, Message{To: "ann@example.com", Subject: "s", Body: "b"}); err == nil {
		t.Fatal("Send() expected error for unreachable host")
	}
}
