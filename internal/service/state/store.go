package state

import (
	"sync"

	"creditbot/internal/model/conversation"
)

const shardCount = 32

// Store is the authoritative owner of per-user conversation state. It is an
// in-memory map sharded by user id so concurrent handlers for unrelated
// users never contend on one lock. Nothing survives a restart by design.
type Store struct {
	shards [shardCount]shard
}

type shard struct {
	mu     sync.RWMutex
	states map[int64]conversation.State
}

// NewStore bootstraps an empty in-memory state store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].states = make(map[int64]conversation.State)
	}
	return s
}

func (s *Store) shard(userID int64) *shard {
	return &s.shards[uint64(userID)%shardCount]
}

// Get returns the user's state, or the canonical empty state when none
// exists. The returned state is a copy; callers never alias the stored map.
func (s *Store) Get(userID int64) conversation.State {
	sh := s.shard(userID)
	sh.mu.RLock()
	st, ok := sh.states[userID]
	sh.mu.RUnlock()
	if !ok {
		return conversation.Empty()
	}
	return copyState(st)
}

// SetStep sets the user's step, creating the state if absent. A non-nil
// patch is merged into the collected data; patch keys overwrite existing
// keys of the same name.
func (s *Store) SetStep(userID int64, step conversation.Step, patch map[string]*string) {
	sh := s.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.states[userID]
	if !ok {
		st = conversation.State{Data: make(map[string]*string)}
	}
	st.Step = step
	for k, v := range patch {
		st.Data[k] = v
	}
	sh.states[userID] = st
}

// SetField records a single collected value, creating the state (at the
// initial step) if absent. A nil value marks a field the user explicitly
// declined to provide, distinct from one never asked for.
func (s *Store) SetField(userID int64, key string, value *string) {
	sh := s.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.states[userID]
	if !ok {
		st = conversation.State{Step: conversation.StepInitial, Data: make(map[string]*string)}
	}
	st.Data[key] = value
	sh.states[userID] = st
}

// Clear removes the user's state entirely. Clearing an absent user is a
// no-op.
func (s *Store) Clear(userID int64) {
	sh := s.shard(userID)
	sh.mu.Lock()
	delete(sh.states, userID)
	sh.mu.Unlock()
}

// Len reports the number of active conversations across all shards.
func (s *Store) Len() int {
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		total += len(sh.states)
		sh.mu.RUnlock()
	}
	return total
}

func copyState(st conversation.State) conversation.State {
	data := make(map[string]*string, len(st.Data))
	for k, v := range st.Data {
		data[k] = v
	}
	return conversation.State{Step: st.Step, Data: data}
}
