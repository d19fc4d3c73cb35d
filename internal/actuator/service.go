package actuator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/logging"
)

// Publisher sends a message to the broker. *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Notifier pushes events to live feed subscribers.
type Notifier interface {
	Broadcast(channel string, payload any)
}

// ServiceDeps holds the collaborators of a Service.
// Publisher and Notifier are optional.
type ServiceDeps struct {
	Repo      Repository
	Publisher Publisher
	Notifier  Notifier
	Logger    *logging.Logger

	// Topics maps each kind to its announcement topic.
	Topics map[Kind]string
	QoS    byte

	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Service records actuator commands and announces them.
type Service struct {
	deps ServiceDeps
}

// NewService creates an actuator service.
func NewService(deps ServiceDeps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	deps.Logger = deps.Logger.With("component", "actuator")
	return &Service{deps: deps}
}

// Record stores a command for a pond, then announces it on the kind's topic.
//
// Parameters:
//   - kind: Solenoid or Aerator
//   - pondID: target pond (not checked for existence)
//   - state: true for on, false for off
//
// Returns:
//   - *Event: the stored event
//   - error: ErrUnknownKind or a store error; announce failures are only logged
func (s *Service) Record(ctx context.Context, kind Kind, pondID int64, state bool) (*Event, error) {
	e := &Event{
		Kind:   kind,
		PondID: pondID,
		Date:   s.deps.Now().UTC().Format(DateLayout),
		State:  state,
	}
	if err := s.deps.Repo.Insert(ctx, e); err != nil {
		return nil, err
	}

	s.deps.Logger.Info("actuator command recorded",
		"kind", string(kind),
		"id", e.ID,
		"idkolam", pondID,
		"state", state,
	)

	s.announce(kind, pondID, state)
	if s.deps.Notifier != nil {
		s.deps.Notifier.Broadcast(kind.Channel(), e)
	}
	return e, nil
}

func (s *Service) announce(kind Kind, pondID int64, state bool) {
	if s.deps.Publisher == nil {
		return
	}
	topic := s.deps.Topics[kind]
	if topic == "" {
		s.deps.Logger.Warn("no announcement topic configured", "kind", string(kind))
		return
	}

	payload, err := json.Marshal(announcementFor(kind, pondID, state))
	if err != nil {
		s.deps.Logger.Error("encoding announcement failed", "kind", string(kind), "error", err)
		return
	}

	if err := s.deps.Publisher.Publish(topic, payload, s.deps.QoS, false); err != nil {
		s.deps.Logger.Warn("announcing actuator command failed",
			"topic", topic,
			"idkolam", pondID,
			"error", err,
		)
		return
	}
	s.deps.Logger.Debug("actuator command announced", "topic", topic, "payload", string(payload))
}

// History returns the events of kind for a pond.
// Returns ErrNoEvents when the pond has none.
func (s *Service) History(ctx context.Context, kind Kind, pondID int64) ([]Event, error) {
	events, err := s.deps.Repo.ListByPond(ctx, kind, pondID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return events, nil
}
