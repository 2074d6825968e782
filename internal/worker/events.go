package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/lechug1122/LuisITRepair/internal/status"
)

const (
	// StatusEventStream is the Redis list the notification component drains.
	// The ledger never holds UI-facing state; it only publishes here.
	StatusEventStream = "events:service_status"

	statusEventMaxLen = 1000
)

// StatusChangeEvent is emitted whenever a service record changes status.
type StatusChangeEvent struct {
	RecordID string        `json:"record_id"`
	Folio    string        `json:"folio"`
	From     status.Status `json:"from"`
	To       status.Status `json:"to"`
	At       time.Time     `json:"at"`
}

// Dispatcher publishes ledger events to Redis. Best-effort: a publish
// failure is logged, never propagated into the transaction that caused it.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// PublishStatusChange pushes the event onto the stream and trims it so an
// absent consumer cannot grow the list without bound.
func (d *Dispatcher) PublishStatusChange(ctx context.Context, ev StatusChangeEvent) {
	if d == nil || d.rdb == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("events: failed to marshal status change")
		return
	}
	pipe := d.rdb.Pipeline()
	pipe.LPush(ctx, StatusEventStream, data)
	pipe.LTrim(ctx, StatusEventStream, 0, statusEventMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).
			Str("folio", ev.Folio).
			Msg("events: failed to publish status change")
	}
}
