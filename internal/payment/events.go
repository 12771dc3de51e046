package payment

import (
	"database/sql"
	"sync"
	"time"
)

// EventStore is a ledger of processed provider event ids. It lets the
// webhook endpoint short-circuit exact redeliveries; the status guard in the
// reconciler remains the real idempotency barrier.
type EventStore interface {
	Seen(eventID string) (bool, error)
	MarkProcessed(eventID, eventType string) error
}

type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) Seen(eventID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM webhook_events WHERE event_id = $1)`, eventID).Scan(&exists)
	return exists, err
}

func (s *PostgresEventStore) MarkProcessed(eventID, eventType string) error {
	_, err := s.db.Exec(`INSERT INTO webhook_events (event_id, event_type, received_at)
        VALUES ($1,$2,$3) ON CONFLICT (event_id) DO NOTHING`,
		eventID, eventType, time.Now().UTC().Format(time.RFC3339))
	return err
}

// InMemoryEventStore is used for tests and local scenarios.
type InMemoryEventStore struct {
	mu   sync.Mutex
	seen map[string]string
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{seen: make(map[string]string)}
}

func (s *InMemoryEventStore) Seen(eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[eventID]
	return ok, nil
}

func (s *InMemoryEventStore) MarkProcessed(eventID, eventType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[eventID] = eventType
	return nil
}
