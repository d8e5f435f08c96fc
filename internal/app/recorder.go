package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirebattle-server/internal/core"
	"github.com/vovakirdan/wirebattle-server/internal/events"
	"github.com/vovakirdan/wirebattle-server/internal/store"
)

const recordTimeout = 5 * time.Second

// Recorder drains finished matches off the hub into the ledger and the
// event publisher. Failures are logged; they never reach the hub.
type Recorder struct {
	store     store.MatchStore
	publisher events.Publisher
	log       *zerolog.Logger
}

// NewRecorder creates a recorder.
func NewRecorder(st store.MatchStore, pub events.Publisher, logger *zerolog.Logger) *Recorder {
	return &Recorder{store: st, publisher: pub, log: logger}
}

// Run records every match received on in until in is closed. Records that
// arrive after ctx is cancelled are still written.
func (r *Recorder) Run(ctx context.Context, in <-chan core.MatchRecord) {
	for rec := range in {
		r.Record(ctx, rec)
	}
}

// Record saves and publishes one match.
func (r *Recorder) Record(ctx context.Context, rec core.MatchRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := r.store.SaveMatch(ctx, toStoreMatch(rec)); err != nil {
		r.log.Error().Err(err).Str("match_id", rec.ID).Msg("failed to save match")
	}
	if err := r.publisher.Publish(ctx, rec); err != nil {
		r.log.Warn().Err(err).Str("match_id", rec.ID).Msg("failed to publish match")
	}
}

func toStoreMatch(rec core.MatchRecord) *store.Match {
	return &store.Match{
		ID:        rec.ID,
		Winner:    rec.Winner,
		Loser:     rec.Loser,
		Outcome:   string(rec.Outcome),
		Turns:     rec.Turns,
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
	}
}
