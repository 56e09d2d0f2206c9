// internal/mutator/transcripts.go
package mutator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/pkg/registry"
)

const (
	transcriptPrefix     = "bot-build:transcript"
	defaultTranscriptTTL = 24 * time.Hour
)

// Transcript is the persisted record of one repair conversation.
type Transcript struct {
	ArtifactID   string              `json:"artifactId"`
	Kind         registry.Kind       `json:"kind"`
	Name         string              `json:"name"`
	Attempts     int                 `json:"attempts"`
	Outcome      string              `json:"outcome"`
	Conversation oracle.Conversation `json:"conversation"`
	SavedAt      time.Time           `json:"savedAt"`
}

// TranscriptStore keeps repair conversations for diagnostics.
type TranscriptStore interface {
	Save(ctx context.Context, t Transcript) error
	Load(ctx context.Context, artifactID string, kind registry.Kind, name string) (*Transcript, error)
}

// TranscriptKey is bot-build:transcript:<artifactId>:<kind>:<name>.
func TranscriptKey(artifactID string, kind registry.Kind, name string) string {
	return fmt.Sprintf("%s:%s:%s:%s", transcriptPrefix, artifactID, kind, name)
}

type RedisTranscriptStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisTranscriptStore(client redis.Cmdable, ttl time.Duration) *RedisTranscriptStore {
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &RedisTranscriptStore{client: client, ttl: ttl}
}

func (s *RedisTranscriptStore) Save(ctx context.Context, t Transcript) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	key := TranscriptKey(t.ArtifactID, t.Kind, t.Name)
	if err := s.client.Set(ctx, key, body, s.ttl).Err(); err != nil {
		return fmt.Errorf("save transcript %s: %w", key, err)
	}
	return nil
}

// Load returns nil, nil when no transcript is stored.
func (s *RedisTranscriptStore) Load(ctx context.Context, artifactID string, kind registry.Kind, name string) (*Transcript, error) {
	key := TranscriptKey(artifactID, kind, name)
	body, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", key, err)
	}
	var t Transcript
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("decode transcript %s: %w", key, err)
	}
	return &t, nil
}
