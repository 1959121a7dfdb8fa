package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Manager manages telegram chat states
type Manager struct {
	storage Storage
	mu      sync.Mutex
}

// NewManager creates a new state manager
func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
	}
}

// Get returns the user's state, or a fresh idle state when none is stored
func (m *Manager) Get(ctx context.Context, userID int64) (*ChatState, error) {
	st, err := m.storage.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &ChatState{UserID: userID, Mode: ModeIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat state from storage: %w", err)
	}

	return st, nil
}

// Update applies fn to the user's state and saves the result
func (m *Manager) Update(ctx context.Context, userID int64, fn func(st *ChatState)) (*ChatState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	fn(st)
	st.UpdatedAt = time.Now()

	if err := m.storage.Set(ctx, st); err != nil {
		return nil, fmt.Errorf("save chat state to storage: %w", err)
	}

	return st, nil
}

// SetMode switches the user to mode and drops any pending résumé
func (m *Manager) SetMode(ctx context.Context, userID int64, mode Mode) error {
	_, err := m.Update(ctx, userID, func(st *ChatState) {
		st.Mode = mode
		if mode != ModeAwaitRole {
			st.Resume = nil
		}
	})
	return err
}

// Clear removes the user's state
func (m *Manager) Clear(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete chat state from storage: %w", err)
	}

	return nil
}
