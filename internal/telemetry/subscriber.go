package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/logging"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/mqtt"
)

// ChannelReading is the live feed channel stored readings are broadcast on.
const ChannelReading = "sensor.reading"

// MessageSource delivers broker messages. *mqtt.Client satisfies it.
type MessageSource interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Mirror receives a copy of every stored reading. *influxdb.Client satisfies it.
type Mirror interface {
	WriteSensorReading(idkolam int64, jenisSensor string, value float64, at time.Time)
}

// Notifier pushes events to live feed subscribers.
type Notifier interface {
	Broadcast(channel string, payload any)
}

// SubscriberDeps holds the collaborators of a Subscriber.
// Mirror and Notifier are optional.
type SubscriberDeps struct {
	Repo     Repository
	Source   MessageSource
	Topic    string
	QoS      byte
	Mirror   Mirror
	Notifier Notifier
	Logger   *logging.Logger

	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Subscriber turns telemetry messages into stored readings.
type Subscriber struct {
	deps SubscriberDeps

	ctx   context.Context
	ctxMu sync.RWMutex
}

// NewSubscriber creates a Subscriber. Call Start to begin receiving.
func NewSubscriber(deps SubscriberDeps) *Subscriber {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	deps.Logger = deps.Logger.With("component", "telemetry")

	return &Subscriber{deps: deps, ctx: context.Background()}
}

// Start subscribes to the telemetry topic. Messages are handled under ctx:
// once it is cancelled, new messages are dropped and in-flight inserts are
// cancelled.
//
// Start does not fail when the broker is offline; the subscription is
// applied when the connection comes up.
func (s *Subscriber) Start(ctx context.Context) error {
	s.ctxMu.Lock()
	s.ctx = ctx
	s.ctxMu.Unlock()

	return s.deps.Source.Subscribe(s.deps.Topic, s.deps.QoS, s.Handle)
}

func (s *Subscriber) context() context.Context {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	return s.ctx
}

// Handle processes one telemetry message. Failures are logged here and
// never returned, so the broker client does not log them a second time.
func (s *Subscriber) Handle(topic string, payload []byte) error {
	ctx := s.context()
	if ctx.Err() != nil {
		s.deps.Logger.Debug("dropping telemetry message during shutdown", "topic", topic)
		return nil
	}

	reading, err := Decode(payload, s.deps.Now())
	if err != nil {
		s.deps.Logger.Warn("discarding telemetry message",
			"topic", topic,
			"error", err,
		)
		return nil
	}

	if err := s.deps.Repo.Insert(ctx, &reading); err != nil {
		s.deps.Logger.Error("storing sensor reading failed",
			"topic", topic,
			"idkolam", reading.PondID,
			"jenis_sensor", reading.SensorType,
			"error", err,
		)
		return nil
	}

	s.deps.Logger.Debug("sensor reading stored",
		"idsensor", reading.ID,
		"idkolam", reading.PondID,
		"jenis_sensor", reading.SensorType,
	)

	if s.deps.Mirror != nil {
		s.deps.Mirror.WriteSensorReading(reading.PondID, reading.SensorType, reading.Value, reading.RecordedAt)
	}
	if s.deps.Notifier != nil {
		s.deps.Notifier.Broadcast(ChannelReading, reading)
	}

	return nil
}
