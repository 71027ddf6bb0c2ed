// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func appendQuery(q string) func(types.ConversationState) (types.ConversationState, error) {
	return func(st types.ConversationState) (types.ConversationState, error) {
		st.Turns = append(st.Turns, types.UserMessage{Text: q})
		st.Usage.Requests++
		return st, nil
	}
}

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()
	s := st.Create()

	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, s.State().SessionID)
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, st.Delete(s.ID))
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(s.ID), ErrNotFound)
}

func TestStoreListOrder(t *testing.T) {
	st := NewStore()
	a := st.Create()
	b := st.Create()
	list := st.List()
	require.Len(t, list, 2)
	assert.False(t, list[1].Created.Before(list[0].Created))
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{list[0].ID, list[1].ID})
}

func TestTurnCommitsOnSuccess(t *testing.T) {
	s := NewStore().Create()

	require.NoError(t, s.Turn(appendQuery("one")))
	require.NoError(t, s.Turn(appendQuery("two")))

	state := s.State()
	require.Len(t, state.Turns, 2)
	assert.Equal(t, types.UserMessage{Text: "two"}, state.Turns[1])
	assert.Equal(t, 2, state.Usage.Requests)
}

func TestTurnDiscardsOnError(t *testing.T) {
	s := NewStore().Create()
	require.NoError(t, s.Turn(appendQuery("one")))

	boom := errors.New("boom")
	err := s.Turn(func(st types.ConversationState) (types.ConversationState, error) {
		st.Turns = append(st.Turns, types.UserMessage{Text: "lost"})
		return st, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, s.State().Turns, 1)
}

func TestStateIsACopy(t *testing.T) {
	s := NewStore().Create()
	require.NoError(t, s.Turn(appendQuery("one")))

	st := s.State()
	st.Turns[0] = types.UserMessage{Text: "changed"}
	assert.Equal(t, types.UserMessage{Text: "one"}, s.State().Turns[0])
}

func TestTurnRejectsConcurrentTurn(t *testing.T) {
	s := NewStore().Create()

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Turn(func(st types.ConversationState) (types.ConversationState, error) {
			close(started)
			<-release
			return appendQuery("slow")(st)
		})
	}()

	<-started
	assert.ErrorIs(t, s.Turn(appendQuery("fast")), ErrBusy)
	close(release)
	wg.Wait()

	require.NoError(t, s.Turn(appendQuery("after")))
	assert.Len(t, s.State().Turns, 2)
}
