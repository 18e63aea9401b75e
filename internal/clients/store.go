package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists contact-form submissions.
type Store interface {
	Create(ctx context.Context, req *CreateClientRequest) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	Delete(ctx context.Context, id string) error
}

// SQLStore keeps client records in the relational database.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a store backed by database/sql.
func NewSQLStore(db *sql.DB) *SQLStore {
	if db == nil {
		panic("clients: db required")
	}
	return &SQLStore{db: db}
}

// Create inserts a new submission.
func (s *SQLStore) Create(ctx context.Context, req *CreateClientRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (id, name, email, service, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		id, req.Name, req.Email, req.Service, req.Message,
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("clients: insert failed: %w", err)
	}

	return &Client{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Service:   req.Service,
		Message:   req.Message,
		CreatedAt: createdAt,
	}, nil
}

// List returns all submissions, newest first.
func (s *SQLStore) List(ctx context.Context) ([]*Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, service, message, created_at
		FROM clients
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("clients: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Client{}
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Service, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("clients: scan failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Delete removes a submission by id.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clients: delete failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("clients: delete failed: %w", err)
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	return nil
}

var _ Store = (*SQLStore)(nil)

// InMemoryStore is used in development and tests when no database is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	clients map[string]*Client
	order   []string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clients: make(map[string]*Client)}
}

// Create inserts a new submission in memory.
func (s *InMemoryStore) Create(ctx context.Context, req *CreateClientRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	client := &Client{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Service:   req.Service,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.clients[client.ID] = client
	s.order = append(s.order, client.ID)
	s.mu.Unlock()
	return client, nil
}

// List returns all submissions, newest first.
func (s *InMemoryStore) List(ctx context.Context) ([]*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if c, ok := s.clients[s.order[i]]; ok {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Delete removes a submission by id.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return ErrClientNotFound
	}
	delete(s.clients, id)
	return nil
}

var _ Store = (*InMemoryStore)(nil)

// IsNotFound reports whether err is the store's not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound)
}
