// Package session caches scene continuity between beats: the persistent
// scene state snapshot and the previous-beat summary. The cache object is
// explicitly owned and TTL-bounded; the pipeline receives it as a
// dependency rather than reaching for shared module state.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// Cache stores and retrieves per-session, per-scene continuity.
type Cache interface {
	SceneState(ctx context.Context, sessionID string, scene int) (vbs.SceneState, bool, error)
	SaveSceneState(ctx context.Context, sessionID string, scene int, state vbs.SceneState) error
	Summary(ctx context.Context, sessionID string, scene int) (string, error)
	SaveSummary(ctx context.Context, sessionID string, scene int, summary string) error
}

// DefaultTTL bounds every cached entry.
const DefaultTTL = 6 * time.Hour

func stateKey(sessionID string, scene int) string {
	return fmt.Sprintf("storyart:session:%s:scene:%d:state", sessionID, scene)
}

func summaryKey(sessionID string, scene int) string {
	return fmt.Sprintf("storyart:session:%s:scene:%d:summary", sessionID, scene)
}

// RedisCache is the production Cache backed by Redis.
type RedisCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

// SceneState loads a cached state snapshot; the second return is false when
// the key is absent or expired.
func (c *RedisCache) SceneState(ctx context.Context, sessionID string, scene int) (vbs.SceneState, bool, error) {
	raw, err := c.rdb.Get(ctx, stateKey(sessionID, scene)).Bytes()
	if err == goredis.Nil {
		return vbs.SceneState{}, false, nil
	}
	if err != nil {
		return vbs.SceneState{}, false, fmt.Errorf("redis get: %w", err)
	}
	var state sceneStateDoc
	if err := json.Unmarshal(raw, &state); err != nil {
		return vbs.SceneState{}, false, fmt.Errorf("malformed cached state: %w", err)
	}
	return state.toState(), true, nil
}

// SaveSceneState stores a state snapshot under the session TTL.
func (c *RedisCache) SaveSceneState(ctx context.Context, sessionID string, scene int, state vbs.SceneState) error {
	raw, err := json.Marshal(fromState(state))
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, stateKey(sessionID, scene), raw, c.ttl).Err()
}

// Summary loads the cached previous-beat summary, empty when absent.
func (c *RedisCache) Summary(ctx context.Context, sessionID string, scene int) (string, error) {
	raw, err := c.rdb.Get(ctx, summaryKey(sessionID, scene)).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return raw, nil
}

// SaveSummary stores the previous-beat summary under the session TTL.
func (c *RedisCache) SaveSummary(ctx context.Context, sessionID string, scene int, summary string) error {
	return c.rdb.Set(ctx, summaryKey(sessionID, scene), summary, c.ttl).Err()
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// sceneStateDoc is the JSON wire shape of a cached state snapshot, matching
// the session layout the narrative pipeline writes.
type sceneStateDoc struct {
	CharactersPresent  []string          `json:"characters_present"`
	GearState          string            `json:"gear_state"`
	Vehicle            string            `json:"vehicle,omitempty"`
	CharacterPositions map[string]string `json:"character_positions,omitempty"`
	CharacterPhases    map[string]string `json:"character_phases,omitempty"`
}

func fromState(s vbs.SceneState) sceneStateDoc {
	return sceneStateDoc{
		CharactersPresent:  s.CharactersPresent,
		GearState:          s.GearState,
		Vehicle:            s.Vehicle,
		CharacterPositions: s.CharacterPositions,
		CharacterPhases:    s.CharacterPhases,
	}
}

func (d sceneStateDoc) toState() vbs.SceneState {
	st := vbs.SceneState{
		CharactersPresent:  d.CharactersPresent,
		GearState:          d.GearState,
		Vehicle:            d.Vehicle,
		CharacterPositions: d.CharacterPositions,
		CharacterPhases:    d.CharacterPhases,
	}
	if st.CharacterPositions == nil {
		st.CharacterPositions = map[string]string{}
	}
	if st.CharacterPhases == nil {
		st.CharacterPhases = map[string]string{}
	}
	return st
}

// MemoryCache is a process-local Cache with the same TTL semantics, used in
// tests and offline runs.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// SceneState loads a cached state snapshot.
func (c *MemoryCache) SceneState(_ context.Context, sessionID string, scene int) (vbs.SceneState, bool, error) {
	raw, ok := c.get(stateKey(sessionID, scene))
	if !ok {
		return vbs.SceneState{}, false, nil
	}
	var doc sceneStateDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return vbs.SceneState{}, false, err
	}
	return doc.toState(), true, nil
}

// SaveSceneState stores a state snapshot.
func (c *MemoryCache) SaveSceneState(_ context.Context, sessionID string, scene int, state vbs.SceneState) error {
	raw, err := json.Marshal(fromState(state))
	if err != nil {
		return err
	}
	c.set(stateKey(sessionID, scene), raw)
	return nil
}

// Summary loads the cached previous-beat summary.
func (c *MemoryCache) Summary(_ context.Context, sessionID string, scene int) (string, error) {
	raw, ok := c.get(summaryKey(sessionID, scene))
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

// SaveSummary stores the previous-beat summary.
func (c *MemoryCache) SaveSummary(_ context.Context, sessionID string, scene int, summary string) error {
	c.set(summaryKey(sessionID, scene), []byte(summary))
	return nil
}
