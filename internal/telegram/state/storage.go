package state

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

var ErrNotFound = errors.New("chat state not found")

// Mode is what the bot expects from the user's next plain message
type Mode string

const (
	ModeIdle      Mode = ""
	ModeAwaitRole Mode = "await_role"
	ModeAwaitJD   Mode = "await_jd"
	ModeInterview Mode = "interview"
)

// PendingResume is a résumé received before its target role
type PendingResume struct {
	Filename string
	Data     []byte
}

// ChatState is the per-user UI state of the bot
type ChatState struct {
	UserID    int64
	Mode      Mode
	Resume    *PendingResume
	UpdatedAt time.Time
}

// Storage defines the interface for chat state persistence
type Storage interface {
	Get(ctx context.Context, userID int64) (*ChatState, error)
	Set(ctx context.Context, st *ChatState) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryStorage keeps chat states in process memory until they go idle
type MemoryStorage struct {
	cache *cache.Cache
}

func NewMemoryStorage(ttl, cleanupInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{cache: cache.New(ttl, cleanupInterval)}
}

func (s *MemoryStorage) Get(_ context.Context, userID int64) (*ChatState, error) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, ErrNotFound
	}
	st := *v.(*ChatState)
	return &st, nil
}

func (s *MemoryStorage) Set(_ context.Context, st *ChatState) error {
	cp := *st
	s.cache.Set(key(st.UserID), &cp, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(key(userID))
	return nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
