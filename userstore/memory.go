package userstore

import (
	"context"
	"sync"
)

// Memory is an in-process store, used for examples and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func memoryKey(table, email string) string {
	return table + "\x00" + email
}

// Get returns the record stored under table/email.
func (m *Memory) Get(ctx context.Context, table, email string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[memoryKey(table, email)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Put stores rec under table/rec.Email, replacing any previous record.
func (m *Memory) Put(ctx context.Context, table string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if table == "" {
		return ErrInvalidTable
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[memoryKey(table, rec.Email)] = rec
	return nil
}
