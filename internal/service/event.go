package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

const publishMaxRetries = 3

// EventDispatcher publishes events off the request path. Delivery is best
// effort: failures are logged and never reach the caller.
type EventDispatcher struct {
	publisher EventPublisher
	backoff   time.Duration
	wg        sync.WaitGroup
}

// CreateEventDispatcher accepts a nil publisher; Dispatch is then a no-op.
func CreateEventDispatcher(publisher EventPublisher, backoff time.Duration) *EventDispatcher {
	return &EventDispatcher{publisher: publisher, backoff: backoff}
}

// Dispatch returns immediately. The delivery keeps the request's logger and
// trace but not its cancellation, so it outlives the response.
func (d *EventDispatcher) Dispatch(ctx context.Context, key string, msg dto.KafkaMessage) {
	if d == nil || d.publisher == nil {
		return
	}

	jsonMsg, err := json.Marshal(msg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "Dispatch").Str("event_type", msg.EventType).Msg("")
		return
	}

	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.publish(ctx, key, msg.EventType, jsonMsg)
	}()
}

// Wait blocks until every dispatched event was delivered or given up on.
func (d *EventDispatcher) Wait() {
	if d == nil {
		return
	}

	d.wg.Wait()
}

func (d *EventDispatcher) publish(ctx context.Context, key, eventType string, value []byte) {
	for i := 0; i < publishMaxRetries; i++ {
		err := d.publisher.WriteMessage(ctx, key, value)
		if err == nil {
			return
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "publishEvent").Str("event_type", eventType).Int("attempt", i+1).Msg("")

		// no point waiting on an open breaker
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return
		}

		if i < publishMaxRetries-1 {
			time.Sleep(d.backoff * time.Duration(i+1))
		}
	}
}
