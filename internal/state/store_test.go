package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withClock replaces the store's clock with one the test can advance in place.
func withClock(s *Store) *time.Time {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ptr := &now
	s.now = func() time.Time { return *ptr }
	return ptr
}

func TestStore_SetGetDelete(t *testing.T) {
	t.Parallel()

	s := New(time.Hour)

	_, ok := s.Get("U1")
	assert.False(t, ok)

	s.Set("U1", Entry{Step: StepAwaitingDateTime, Name: "Raid"})

	got, ok := s.Get("U1")
	require.True(t, ok)
	assert.Equal(t, StepAwaitingDateTime, got.Step)
	assert.Equal(t, "Raid", got.Name)

	// No cross-user visibility.
	_, ok = s.Get("U2")
	assert.False(t, ok)

	s.Delete("U1")
	_, ok = s.Get("U1")
	assert.False(t, ok)

	// Deleting again is a no-op.
	s.Delete("U1")
}

func TestStore_Get_ExpiredEntryDropped(t *testing.T) {
	t.Parallel()

	s := New(time.Hour)
	clock := withClock(s)

	s.Set("U1", Entry{Step: StepAwaitingDateTime, Name: "Raid"})

	*clock = clock.Add(time.Hour + time.Second)

	_, ok := s.Get("U1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_SetName(t *testing.T) {
	t.Parallel()

	s := New(time.Hour)

	assert.False(t, s.SetName("U1", "Raid"), "no entry yet")

	s.Set("U1", Entry{Step: StepAwaitingDateTime})
	require.True(t, s.SetName("U1", "Raid"))

	got, ok := s.Get("U1")
	require.True(t, ok)
	assert.Equal(t, "Raid", got.Name)
	assert.Equal(t, StepAwaitingDateTime, got.Step, "step is preserved")
}

func TestStore_SetName_RefreshesTTL(t *testing.T) {
	t.Parallel()

	s := New(time.Hour)
	clock := withClock(s)

	s.Set("U1", Entry{Step: StepAwaitingDateTime})

	*clock = clock.Add(50 * time.Minute)
	require.True(t, s.SetName("U1", "Raid"))

	*clock = clock.Add(50 * time.Minute)
	_, ok := s.Get("U1")
	assert.True(t, ok, "entry renewed by SetName should still be live")
}

func TestStore_Sweep(t *testing.T) {
	t.Parallel()

	s := New(time.Hour)
	clock := withClock(s)

	s.Set("U1", Entry{Step: StepAwaitingDateTime, Name: "a"})
	s.Set("U2", Entry{Step: StepAwaitingDateTime, Name: "b"})

	*clock = clock.Add(30 * time.Minute)
	s.Set("U3", Entry{Step: StepAwaitingDateTime, Name: "c"})

	*clock = clock.Add(45 * time.Minute)

	dropped := s.Sweep()
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("U3")
	assert.True(t, ok)
}
