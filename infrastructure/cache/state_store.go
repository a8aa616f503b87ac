package cache

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"channelhub/domain/model"
	"channelhub/domain/repository"
)

const stateTTL = 10 * time.Minute

var ErrStateNotFound = fmt.Errorf("oauth state not found or expired")

type memoryState struct {
	payload   model.StatePayload
	expiresAt time.Time
}

// StateStore holds one-time OAuth state tokens. Redis backs it in normal
// operation; when no Redis client is available it degrades to an in-process
// map, which is enough for a single instance.
type StateStore struct {
	redis *redis.Client

	mu  sync.Mutex
	mem map[string]memoryState
}

func NewStateStore(redisClient *redis.Client) repository.IOAuthState {
	return &StateStore{
		redis: redisClient,
		mem:   map[string]memoryState{},
	}
}

func (s *StateStore) Put(ctx context.Context, payload model.StatePayload) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal state payload: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, s.key(state), raw, stateTTL).Err(); err != nil {
			return "", fmt.Errorf("store state: %w", err)
		}
		return state, nil
	}

	s.mu.Lock()
	now := time.Now()
	// Abandoned connect flows never hit Take, so expired entries are swept
	// here to keep the fallback map bounded.
	for k, entry := range s.mem {
		if now.After(entry.expiresAt) {
			delete(s.mem, k)
		}
	}
	s.mem[state] = memoryState{payload: payload, expiresAt: now.Add(stateTTL)}
	s.mu.Unlock()
	return state, nil
}

// Take consumes the state token. A second Take with the same token fails,
// which makes callback replays observable.
func (s *StateStore) Take(ctx context.Context, state string) (model.StatePayload, error) {
	if s.redis != nil {
		raw, err := s.redis.GetDel(ctx, s.key(state)).Bytes()
		if err == redis.Nil {
			return model.StatePayload{}, ErrStateNotFound
		}
		if err != nil {
			return model.StatePayload{}, fmt.Errorf("take state: %w", err)
		}
		var payload model.StatePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return model.StatePayload{}, fmt.Errorf("unmarshal state payload: %w", err)
		}
		return payload, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.mem[state]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.mem, state)
		return model.StatePayload{}, ErrStateNotFound
	}
	delete(s.mem, state)
	return entry.payload, nil
}

func (s *StateStore) key(state string) string {
	return "oauth_state:" + state
}
