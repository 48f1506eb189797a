// Package bus distributes widget interactions to every registered subscriber.
//
// Delivery is synchronous and in subscription order. The bus does not route by
// target widget: subscribers check Interaction.Targets themselves.
package bus

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// Subscriber receives every broadcast interaction. A returned error is logged
// and does not stop delivery to the remaining subscribers.
type Subscriber func(models.Interaction) error

// Token identifies a subscription for Unsubscribe.
type Token uint64

type subscription struct {
	token Token
	fn    Subscriber
}

type Bus struct {
	mu    sync.Mutex
	subs  []subscription
	next  Token
	last  *models.Interaction
	log   *slog.Logger
	clock func() time.Time
}

func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{log: log, clock: time.Now}
}

// Subscribe registers fn and returns the token that removes it again.
func (b *Bus) Subscribe(fn Subscriber) Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.subs = append(b.subs, subscription{token: b.next, fn: fn})
	return b.next
}

// Unsubscribe removes the subscription. Unknown tokens are ignored.
func (b *Bus) Unsubscribe(token Token) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.token == token {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Broadcast stamps the interaction, records it as the last interaction and
// delivers it to every subscriber in registration order.
func (b *Bus) Broadcast(in models.Interaction) models.Interaction {
	in.Timestamp = b.clock().UnixMilli()
	in.TargetWidgets = append([]string(nil), in.TargetWidgets...)
	if len(in.TargetWidgets) == 0 {
		in.TargetWidgets = []string{models.TargetAll}
	}

	b.mu.Lock()
	stored := in
	b.last = &stored
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if err := b.deliver(s, in); err != nil {
			b.log.Error("interaction subscriber failed",
				"subscriber", uint64(s.token),
				"type", in.Type,
				"action", in.Payload.Action,
				"source", in.SourceWidgetID,
				"err", err,
			)
		}
	}
	return in
}

func (b *Bus) deliver(s subscription, in models.Interaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.fn(in)
}

// LastInteraction returns a copy of the most recent broadcast, or nil.
func (b *Bus) LastInteraction() *models.Interaction {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.last == nil {
		return nil
	}
	cp := *b.last
	cp.TargetWidgets = append([]string(nil), b.last.TargetWidgets...)
	return &cp
}

// Len returns the number of registered subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
