package subscribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clawinfra/herald/internal/types"
)

// Roster is the on-disk YAML declaration of subscribers loaded at startup.
type Roster struct {
	Subscribers []RosterEntry `yaml:"subscribers"`
}

// RosterEntry declares one subscriber and its channel preference.
type RosterEntry struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Target string `yaml:"target,omitempty"`
}

// LoadRoster reads a roster file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	for i, e := range r.Subscribers {
		if e.ID == "" {
			return nil, fmt.Errorf("roster entry %d: id required", i)
		}
		if e.Kind == "" {
			return nil, fmt.Errorf("roster entry %q: kind required", e.ID)
		}
	}
	return &r, nil
}

// Register creates a LogSubscriber for every roster entry and subscribes it.
func (r *Roster) Register(reg *Registry, logger *slog.Logger) {
	for _, e := range r.Subscribers {
		reg.Subscribe(NewLogSubscriber(e.ID, types.Kind(e.Kind), logger))
	}
}

// LogSubscriber is a subscriber that records matching notifications in the
// structured log. Roster-declared subscribers use it.
type LogSubscriber struct {
	id     string
	kind   types.Kind
	logger *slog.Logger
}

// NewLogSubscriber creates a log-backed subscriber.
func NewLogSubscriber(id string, kind types.Kind, logger *slog.Logger) *LogSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSubscriber{id: id, kind: kind, logger: logger.With("subscriber", id)}
}

func (s *LogSubscriber) ID() string             { return s.id }
func (s *LogSubscriber) Preference() types.Kind { return s.kind }

func (s *LogSubscriber) Update(ctx context.Context, n types.Notification) error {
	s.logger.Info("notification observed", "id", n.ID, "kind", n.Kind, "length", len(n.Body))
	return nil
}
