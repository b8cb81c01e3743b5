package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("new event is open and empty", func(t *testing.T) {
		events, _ := newServices(t)

		created, err := events.CreateEvent(ctx, "Office2024", "Team exchange", "20 EUR", "Books")
		require.NoError(t, err)
		assert.True(t, created.RegistrationOpen)
		assert.Empty(t, created.Participants)

		got, err := events.GetEvent(ctx, "Office2024")
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, "Books", got.Theme)
	})

	t.Run("empty fields are rejected", func(t *testing.T) {
		events, _ := newServices(t)

		cases := [][4]string{
			{"", "d", "p", "t"},
			{"n", "", "p", "t"},
			{"n", "d", " ", "t"},
			{"n", "d", "p", ""},
		}
		for _, c := range cases {
			_, err := events.CreateEvent(ctx, c[0], c[1], c[2], c[3])
			assert.ErrorIs(t, err, ErrInvalidInput, "fields %q", c)
		}

		list, err := events.ListEvents(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("duplicate name leaves the first event alone", func(t *testing.T) {
		events, _ := newServices(t)

		_, err := events.CreateEvent(ctx, "Office2024", "d", "p", "t")
		require.NoError(t, err)
		_, err = events.Register(ctx, "Office2024", "Ana")
		require.NoError(t, err)

		_, err = events.CreateEvent(ctx, "Office2024", "other", "other", "other")
		require.ErrorIs(t, err, ErrDuplicateName)

		got, err := events.GetEvent(ctx, "Office2024")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana"}, got.Participants)
		assert.Equal(t, "d", got.Description)
	})
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()
	events, _ := newServices(t)

	list, err := events.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"c", "a", "b"} {
		_, err := events.CreateEvent(ctx, name, "d", "p", "t")
		require.NoError(t, err)
	}
	_, err = events.Register(ctx, "a", "Ana")
	require.NoError(t, err)

	list, err = events.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "a", list[1].Name)
	assert.Equal(t, "b", list[2].Name)
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	events, _ := newServices(t)

	_, err := events.UpdateEvent(ctx, "missing", "d", "p", "t", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = events.CreateEvent(ctx, "party", "d", "p", "t")
	require.NoError(t, err)
	_, err = events.Register(ctx, "party", "Ana")
	require.NoError(t, err)

	updated, err := events.UpdateEvent(ctx, "party", "new d", "new p", "new t", false)
	require.NoError(t, err)
	assert.Equal(t, "new d", updated.Description)
	assert.False(t, updated.RegistrationOpen)
	assert.Equal(t, []string{"Ana"}, updated.Participants)

	_, err = events.UpdateEvent(ctx, "party", "", "p", "t", true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEventService_RegisterUnregister(t *testing.T) {
	ctx := context.Background()
	events, _ := newServices(t)

	_, err := events.Register(ctx, "missing", "Ana")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = events.CreateEvent(ctx, "party", "d", "p", "t")
	require.NoError(t, err)
	for _, name := range []string{"Ana", "Bo", "Cid"} {
		_, err := events.Register(ctx, "party", name)
		require.NoError(t, err)
	}

	_, err = events.Register(ctx, "party", "Bo")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	_, err = events.Register(ctx, "party", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	before, err := events.GetEvent(ctx, "party")
	require.NoError(t, err)

	_, err = events.Register(ctx, "party", "Dee")
	require.NoError(t, err)
	after, err := events.Unregister(ctx, "party", "Dee")
	require.NoError(t, err)
	assert.Equal(t, before.Participants, after.Participants)

	after, err = events.Unregister(ctx, "party", "Bo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Cid"}, after.Participants)

	_, err = events.Unregister(ctx, "party", "Bo")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = events.Unregister(ctx, "missing", "Ana")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventService_RegisterIgnoresClosedRegistration(t *testing.T) {
	ctx := context.Background()
	events, _ := newServices(t)

	_, err := events.CreateEvent(ctx, "party", "d", "p", "t")
	require.NoError(t, err)
	require.NoError(t, events.CloseRegistration(ctx, "party"))

	got, err := events.Register(ctx, "party", "Ana")
	require.NoError(t, err)
	assert.False(t, got.RegistrationOpen)
	assert.Equal(t, []string{"Ana"}, got.Participants)
}

func TestEventService_ConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	events, _ := newServices(t)

	_, err := events.CreateEvent(ctx, "party", "d", "p", "t")
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := events.Register(ctx, "party", fmt.Sprintf("guest-%02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := events.GetEvent(ctx, "party")
	require.NoError(t, err)
	assert.Len(t, got.Participants, n)
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	events, draws := newServices(t)

	deleted, err := events.DeleteEvent(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	for _, name := range []string{"keep", "drop"} {
		_, err := events.CreateEvent(ctx, name, "d", "p", "t")
		require.NoError(t, err)
		for _, p := range []string{"Ana", "Bo"} {
			_, err := events.Register(ctx, name, p)
			require.NoError(t, err)
		}
		_, err = events.DrawEvent(ctx, name)
		require.NoError(t, err)
	}

	deleted, err = events.DeleteEvent(ctx, "drop")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = events.GetEvent(ctx, "drop")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = draws.Results(ctx, "drop")
	assert.ErrorIs(t, err, ErrNotFound)

	pairs, err := draws.Results(ctx, "keep")
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	deleted, err = events.DeleteEvent(ctx, "drop")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestEventService_DrawEvent(t *testing.T) {
	ctx := context.Background()
	events, _ := newServices(t)

	_, err := events.DrawEvent(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = events.CreateEvent(ctx, "party", "d", "p", "t")
	require.NoError(t, err)
	_, err = events.Register(ctx, "party", "Ana")
	require.NoError(t, err)

	_, err = events.DrawEvent(ctx, "party")
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	got, err := events.GetEvent(ctx, "party")
	require.NoError(t, err)
	assert.True(t, got.RegistrationOpen, "failed draw must not close registration")

	_, err = events.Register(ctx, "party", "Bo")
	require.NoError(t, err)
	set, err := events.DrawEvent(ctx, "party")
	require.NoError(t, err)
	assertDerangement(t, []string{"Ana", "Bo"}, set.Pairs)

	got, err = events.GetEvent(ctx, "party")
	require.NoError(t, err)
	assert.False(t, got.RegistrationOpen)
}

// Office2024 walks the full lifecycle of one event.
func TestEventService_Office2024(t *testing.T) {
	ctx := context.Background()
	events, draws := newServices(t)

	_, err := events.CreateEvent(ctx, "Office2024", "Office party", "25", "Handmade")
	require.NoError(t, err)
	for _, name := range []string{"Ana", "Bo", "Cid"} {
		_, err := events.Register(ctx, "Office2024", name)
		require.NoError(t, err)
	}

	first, err := events.DrawEvent(ctx, "Office2024")
	require.NoError(t, err)
	require.Len(t, first.Pairs, 3)
	assertDerangement(t, []string{"Ana", "Bo", "Cid"}, first.Pairs)
	assertSingleCycle(t, first.Pairs)

	want, ok := first.ReceiverOf("Ana")
	require.True(t, ok)
	got, err := draws.Lookup(ctx, "Office2024", "Ana")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Roster edits after the draw do not touch the published pairs.
	_, err = events.Register(ctx, "Office2024", "Dee")
	require.NoError(t, err)
	pairs, err := draws.Results(ctx, "Office2024")
	require.NoError(t, err)
	assert.Equal(t, first.Pairs, pairs)
	_, err = events.Unregister(ctx, "Office2024", "Dee")
	require.NoError(t, err)

	second, err := events.RedrawEvent(ctx, "Office2024")
	require.NoError(t, err)
	stored, err := draws.Assignment(ctx, "Office2024")
	require.NoError(t, err)
	assert.Equal(t, second.DrawID, stored.DrawID)
	assert.NotEqual(t, first.DrawID, stored.DrawID)
	assertDerangement(t, []string{"Ana", "Bo", "Cid"}, stored.Pairs)

	deleted, err := events.DeleteEvent(ctx, "Office2024")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = draws.Results(ctx, "Office2024")
	assert.ErrorIs(t, err, ErrNotFound)
}

func createDrawable(t *testing.T, events *EventService, name string, participants ...string) {
	t.Helper()
	ctx := context.Background()

	_, err := events.CreateEvent(ctx, name, "d", "p", "t")
	require.NoError(t, err)
	for _, p := range participants {
		_, err := events.Register(ctx, name, p)
		require.NoError(t, err)
	}
}

func TestEventService_DrawEvent_KeepsPreviousDrawWhenClosingFails(t *testing.T) {
	ctx := context.Background()
	events, draws, eventStore, _ := newFlakyServices(t)
	createDrawable(t, events, "party", "Ana", "Bo", "Cid")

	first, err := events.DrawEvent(ctx, "party")
	require.NoError(t, err)

	_, err = events.UpdateEvent(ctx, "party", "d", "p", "t", true)
	require.NoError(t, err)

	eventStore.failNext(1)
	_, err = events.DrawEvent(ctx, "party")
	assert.ErrorIs(t, err, errDiskFull)

	kept, err := draws.Assignment(ctx, "party")
	require.NoError(t, err)
	assert.Equal(t, first.DrawID, kept.DrawID)
	assert.Equal(t, first.Pairs, kept.Pairs)

	got, err := events.GetEvent(ctx, "party")
	require.NoError(t, err)
	assert.True(t, got.RegistrationOpen)
}

func TestEventService_DrawEvent_ReopensRegistrationWhenDrawFails(t *testing.T) {
	ctx := context.Background()
	events, draws, _, assignments := newFlakyServices(t)
	createDrawable(t, events, "party", "Ana", "Bo")

	before, err := events.GetEvent(ctx, "party")
	require.NoError(t, err)

	assignments.failNext(1)
	_, err = events.DrawEvent(ctx, "party")
	assert.ErrorIs(t, err, errDiskFull)

	after, err := events.GetEvent(ctx, "party")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = draws.Results(ctx, "party")
	assert.ErrorIs(t, err, ErrNotFound)

	set, err := events.DrawEvent(ctx, "party")
	require.NoError(t, err)
	assertDerangement(t, []string{"Ana", "Bo"}, set.Pairs)
}

func TestEventService_DeleteEvent_RetryFinishesCascade(t *testing.T) {
	ctx := context.Background()
	events, draws, _, assignments := newFlakyServices(t)
	createDrawable(t, events, "party", "Ana", "Bo")
	_, err := events.DrawEvent(ctx, "party")
	require.NoError(t, err)

	assignments.failNextDelete(1)
	deleted, err := events.DeleteEvent(ctx, "party")
	assert.True(t, deleted)
	assert.ErrorIs(t, err, errDiskFull)

	_, err = events.GetEvent(ctx, "party")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = draws.Results(ctx, "party")
	require.NoError(t, err, "the set outlives a failed cascade")

	deleted, err = events.DeleteEvent(ctx, "party")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = draws.Results(ctx, "party")
	assert.ErrorIs(t, err, ErrNotFound)
}
