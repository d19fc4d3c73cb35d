package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/mqtt"
)

type fakeSource struct {
	topic   string
	qos     byte
	handler mqtt.MessageHandler
}

func (f *fakeSource) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.topic = topic
	f.qos = qos
	f.handler = handler
	return nil
}

type memRepo struct {
	mu       sync.Mutex
	readings []Reading
	err      error
}

func (m *memRepo) Insert(_ context.Context, r *Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	r.ID = int64(len(m.readings) + 1)
	m.readings = append(m.readings, *r)
	return nil
}

func (m *memRepo) ListByPond(_ context.Context, pondID int64) ([]Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Reading
	for _, r := range m.readings {
		if r.PondID == pondID {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingMirror struct{ calls int }

func (m *recordingMirror) WriteSensorReading(int64, string, float64, time.Time) { m.calls++ }

type recordingNotifier struct {
	channels []string
}

func (n *recordingNotifier) Broadcast(channel string, _ any) {
	n.channels = append(n.channels, channel)
}

func newTestSubscriber(repo Repository) (*Subscriber, *fakeSource, *recordingMirror, *recordingNotifier) {
	src := &fakeSource{}
	mirror := &recordingMirror{}
	notifier := &recordingNotifier{}
	s := NewSubscriber(SubscriberDeps{
		Repo:     repo,
		Source:   src,
		Topic:    "sensor/mac",
		QoS:      1,
		Mirror:   mirror,
		Notifier: notifier,
		Now:      func() time.Time { return fixedNow },
	})
	return s, src, mirror, notifier
}

func TestSubscriber_StartSubscribesTopic(t *testing.T) {
	s, src, _, _ := newTestSubscriber(&memRepo{})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if src.topic != "sensor/mac" || src.qos != 1 {
		t.Errorf("subscribed to %q qos %d, want sensor/mac qos 1", src.topic, src.qos)
	}
	if src.handler == nil {
		t.Fatal("handler not registered")
	}
}

func TestSubscriber_StoresValidReading(t *testing.T) {
	repo := &memRepo{}
	s, src, mirror, notifier := newTestSubscriber(repo)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := src.handler("sensor/mac", []byte(`{"idkolam":4,"jenis_sensor":"ph","value":7.2}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	if len(repo.readings) != 1 {
		t.Fatalf("stored %d readings, want 1", len(repo.readings))
	}
	if got := repo.readings[0].Timestamp; got != "2026-03-03T22:06:07.891Z" {
		t.Errorf("Timestamp = %q", got)
	}
	if mirror.calls != 1 {
		t.Errorf("mirror calls = %d, want 1", mirror.calls)
	}
	if len(notifier.channels) != 1 || notifier.channels[0] != ChannelReading {
		t.Errorf("broadcasts = %v, want [%s]", notifier.channels, ChannelReading)
	}
}

func TestSubscriber_DiscardsInvalidMessage(t *testing.T) {
	repo := &memRepo{}
	s, src, mirror, notifier := newTestSubscriber(repo)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, payload := range []string{
		`not json`,
		`{"jenis_sensor":"ph","value":1}`,
		`{"idkolam":1,"jenis_sensor":"ph"}`,
		`{"idkolam":7,"jenis_sensor":"ph","value":"Infinity"}`,
	} {
		if err := src.handler("sensor/mac", []byte(payload)); err != nil {
			t.Errorf("handler(%q) error = %v, want nil", payload, err)
		}
	}

	if len(repo.readings) != 0 {
		t.Errorf("stored %d readings, want 0", len(repo.readings))
	}
	if mirror.calls != 0 || len(notifier.channels) != 0 {
		t.Errorf("side effects on invalid messages: mirror=%d broadcasts=%d", mirror.calls, len(notifier.channels))
	}
}

func TestSubscriber_InsertFailureIsNotPropagated(t *testing.T) {
	repo := &memRepo{err: errors.New("disk full")}
	s, src, mirror, notifier := newTestSubscriber(repo)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := src.handler("sensor/mac", []byte(`{"idkolam":1,"jenis_sensor":"ph","value":7}`)); err != nil {
		t.Errorf("handler error = %v, want nil", err)
	}
	if mirror.calls != 0 || len(notifier.channels) != 0 {
		t.Errorf("side effects after failed insert: mirror=%d broadcasts=%d", mirror.calls, len(notifier.channels))
	}
}

func TestSubscriber_DropsAfterShutdown(t *testing.T) {
	repo := &memRepo{}
	s, src, _, _ := newTestSubscriber(repo)
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	if err := src.handler("sensor/mac", []byte(`{"idkolam":1,"jenis_sensor":"ph","value":7}`)); err != nil {
		t.Errorf("handler error = %v", err)
	}
	if len(repo.readings) != 0 {
		t.Errorf("stored %d readings after shutdown, want 0", len(repo.readings))
	}
}

func TestSubscriber_EndToEndWithSQLite(t *testing.T) {
	repo := NewSQLRepository(testDB(t))
	s := NewSubscriber(SubscriberDeps{Repo: repo, Source: &fakeSource{}, Topic: "sensor/mac"})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Handle("sensor/mac", []byte(`{"idkolam":"7","jenis_sensor":"suhu","value":"25.5"}`)); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}

	got, err := repo.ListByPond(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByPond() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("stored %d readings, want 3", len(got))
	}
	if got[0].Value != 25.5 {
		t.Errorf("Value = %v, want 25.5", got[0].Value)
	}
}
