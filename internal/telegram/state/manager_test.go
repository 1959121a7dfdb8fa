package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DefaultsToIdle(t *testing.T) {
	m := NewManager(NewMemoryStorage(time.Hour, time.Minute))

	st, err := m.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), st.UserID)
	assert.Equal(t, ModeIdle, st.Mode)
	assert.Nil(t, st.Resume)
}

func TestManager_SetModeDropsPendingResume(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStorage(time.Hour, time.Minute))

	_, err := m.Update(ctx, 7, func(st *ChatState) {
		st.Mode = ModeAwaitRole
		st.Resume = &PendingResume{Filename: "cv.pdf", Data: []byte("%PDF")}
	})
	require.NoError(t, err)

	st, err := m.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, st.Resume)
	assert.Equal(t, "cv.pdf", st.Resume.Filename)

	require.NoError(t, m.SetMode(ctx, 7, ModeInterview))

	st, err = m.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, ModeInterview, st.Mode)
	assert.Nil(t, st.Resume)
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStorage(time.Hour, time.Minute))

	require.NoError(t, m.SetMode(ctx, 7, ModeAwaitJD))
	require.NoError(t, m.Clear(ctx, 7))

	st, err := m.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, ModeIdle, st.Mode)
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(time.Hour, time.Minute)

	require.NoError(t, s.Set(ctx, &ChatState{UserID: 1, Mode: ModeAwaitJD}))

	st, err := s.Get(ctx, 1)
	require.NoError(t, err)
	st.Mode = ModeInterview

	again, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ModeAwaitJD, again.Mode)
}
