package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

const (
	pollTimeoutSeconds = 30
	backoffStep        = 15 * time.Second
	backoffCap         = 60 * time.Second
	chatQueueDepth     = 16
)

// Handler consumes classified events.
type Handler interface {
	HandleEvent(ctx context.Context, ev models.Event)
}

// Poller drives the long-poll update loop and fans events out to one worker
// per chat. Events for the same chat are handled strictly in order; different
// chats never block each other.
type Poller struct {
	client  *Client
	handler Handler

	mu      sync.Mutex
	workers map[int64]chan models.Event
	wg      sync.WaitGroup
}

// NewPoller creates a poller delivering events to handler.
func NewPoller(client *Client, handler Handler) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		workers: make(map[int64]chan models.Event),
	}
}

// Run polls until the context is canceled, then drains the per-chat workers.
// Poll failures back off linearly with the attempt count, capped.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Poller.Run: starting update loop", "bot", p.client.Username())

	offset := 0
	attempt := 0
	for {
		if ctx.Err() != nil {
			break
		}
		updates, err := p.client.GetUpdates(offset, pollTimeoutSeconds)
		if err != nil {
			attempt++
			delay := backoffDelay(attempt)
			slog.Error("Poller.Run: poll failed", "error", err, "attempt", attempt, "retryIn", delay)
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			ev, ok := classifyUpdate(u)
			if !ok {
				continue
			}
			p.dispatch(ctx, ev)
		}
	}

	p.mu.Lock()
	for _, ch := range p.workers {
		close(ch)
	}
	p.workers = make(map[int64]chan models.Event)
	p.mu.Unlock()
	p.wg.Wait()
	slog.Info("Poller.Run: update loop stopped")
	return ctx.Err()
}

// dispatch queues an event on its chat's worker, starting the worker on first
// use. A full queue drops the event rather than stalling the poll loop.
func (p *Poller) dispatch(ctx context.Context, ev models.Event) {
	p.mu.Lock()
	ch, ok := p.workers[ev.ChatID]
	if !ok {
		ch = make(chan models.Event, chatQueueDepth)
		p.workers[ev.ChatID] = ch
		p.wg.Add(1)
		go p.runWorker(ctx, ev.ChatID, ch)
	}
	p.mu.Unlock()

	select {
	case ch <- ev:
	default:
		slog.Warn("Poller.dispatch: chat queue full, dropping event", "chatID", ev.ChatID, "kind", ev.Kind)
	}
}

func (p *Poller) runWorker(ctx context.Context, chatID int64, ch <-chan models.Event) {
	defer p.wg.Done()
	for ev := range ch {
		p.handler.HandleEvent(ctx, ev)
	}
	slog.Debug("Poller.runWorker: worker stopped", "chatID", chatID)
}

// backoffDelay returns the wait before the next poll attempt: linear in the
// attempt count, capped.
func backoffDelay(attempt int) time.Duration {
	d := time.Duration(attempt) * backoffStep
	if d > backoffCap {
		return backoffCap
	}
	return d
}
