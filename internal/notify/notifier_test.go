package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordingSender struct {
	name   string
	err    error
	titles []string
}

func (s *recordingSender) Send(ctx context.Context, title, message string) error {
	if s.err != nil {
		return s.err
	}
	s.titles = append(s.titles, title)
	return nil
}

func (s *recordingSender) Name() string { return s.name }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyFansOut(t *testing.T) {
	a := &recordingSender{name: "a"}
	b := &recordingSender{name: "b"}

	n := NewNotifier([]Sender{a, b}, nil, discard())
	n.Notify(context.Background(), EventRunFailed, "corrida fallida", "detalle")

	if len(a.titles) != 1 || len(b.titles) != 1 {
		t.Errorf("deliveries = %d/%d, want 1/1", len(a.titles), len(b.titles))
	}
}

func TestNotifyEventFilter(t *testing.T) {
	s := &recordingSender{name: "a"}

	n := NewNotifier([]Sender{s}, []string{EventRunFailed}, discard())
	n.Notify(context.Background(), EventPublishFailed, "ignorado", "detalle")
	n.Notify(context.Background(), EventRunFailed, "entregado", "detalle")

	if len(s.titles) != 1 || s.titles[0] != "entregado" {
		t.Errorf("titles = %v, want only the allowed event", s.titles)
	}
}

func TestNotifyFailingSenderDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("boom")}
	good := &recordingSender{name: "good"}

	n := NewNotifier([]Sender{bad, good}, nil, discard())
	n.Notify(context.Background(), EventRunFailed, "titulo", "detalle")

	if len(good.titles) != 1 {
		t.Errorf("good sender deliveries = %d, want 1", len(good.titles))
	}
}

func TestTelegramSend(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := NewTelegramSender("bot-token", "42", 5*time.Second).WithBaseURL(srv.URL)
	if err := s.Send(context.Background(), "titulo", "mensaje"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/botbot-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestDiscordSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL, 5*time.Second)
	if err := s.Send(context.Background(), "titulo", "mensaje"); err == nil {
		t.Fatal("Send should fail on non-2xx status")
	}
}
