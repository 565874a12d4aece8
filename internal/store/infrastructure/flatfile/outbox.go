package flatfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmehra2102/order-fulfillment-console/pkg/outbox"
)

const OutboxFile = "outbox.jsonl"

// OutboxStore keeps the export queue in a JSON-lines file. The console
// enqueues while the relay goroutine claims, so every method holds mu.
type OutboxStore struct {
	log  *slog.Logger
	repo *Repository

	mu     sync.Mutex
	events []outbox.Event
	nextID int64
	loaded bool
	now    func() time.Time
}

func NewOutboxStore(log *slog.Logger, repo *Repository) *OutboxStore {
	return &OutboxStore{log: log, repo: repo, nextID: 1, now: time.Now}
}

func (s *OutboxStore) Enqueue(ctx context.Context, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	for _, e := range events {
		e.ID = s.nextID
		s.nextID++
		if e.Status == "" {
			e.Status = outbox.StatusPending
		}
		s.events = append(s.events, e)
	}
	return s.flush()
}

func (s *OutboxStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	now := s.now()
	var out []outbox.Event
	for i := range s.events {
		if len(out) >= batchSize {
			break
		}
		e := &s.events[i]
		if !e.Claimable(now) {
			continue
		}
		e.Status = outbox.StatusInProgress
		e.RelayID = relayID
		e.LeaseUntil = now.Add(lease)
		out = append(out, *e)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, s.flush()
}

// MarkSent drops delivered events from the queue.
func (s *OutboxStore) MarkSent(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sent := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		sent[id] = struct{}{}
	}
	kept := s.events[:0]
	removed := 0
	for _, e := range s.events {
		if _, ok := sent[e.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	if removed == 0 {
		return errors.New("no rows updated")
	}
	return s.flush()
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		e := &s.events[i]
		e.Status = outbox.StatusFailed
		e.RetryCount++
		e.LastError = &errMsg
		if e.RetryCount >= outbox.MaxRetries {
			s.log.Warn("outbox event parked", "event_id", e.EventID, "retries", e.RetryCount)
		}
		return s.flush()
	}
	return fmt.Errorf("outbox event %d not found", id)
}

// Pending returns a copy of every queued event.
func (s *OutboxStore) Pending() ([]outbox.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	return append([]outbox.Event(nil), s.events...), nil
}

func (s *OutboxStore) load() error {
	if s.loaded {
		return nil
	}
	s.loaded = true
	lines, err := s.repo.ReadLines(OutboxFile)
	if err != nil {
		return err
	}
	for i, l := range lines {
		var e outbox.Event
		if err := json.Unmarshal([]byte(l), &e); err != nil {
			s.log.Warn("corrupt outbox entry skipped", "line", i+1, "err", err)
			continue
		}
		s.events = append(s.events, e)
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	return nil
}

func (s *OutboxStore) flush() error {
	lines := make([]string, 0, len(s.events))
	for _, e := range s.events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode outbox event %d: %w", e.ID, err)
		}
		lines = append(lines, string(b))
	}
	return s.repo.WriteFile(OutboxFile, lines)
}

var _ outbox.Store = (*OutboxStore)(nil)
