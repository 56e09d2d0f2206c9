// Package stagetest wires the bot build stages against in-memory fakes.
package stagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/aws"
	"lex-build-workers/internal/common/lex/lextest"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/internal/common/oracle/oracletest"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/mutator"
	"lex-build-workers/pkg/registry"
)

// ArtifactID is the artifact every fixture seeds.
const ArtifactID = "artifact-1"

// Fixture holds one in-memory environment.
type Fixture struct {
	Repo     *artifacts.MemoryRepository
	Tracker  *artifacts.Tracker
	Platform *lextest.Platform
	Model    *oracletest.Model
	Oracle   *oracle.Client
	Mutator  *mutator.Mutator
	Store    *MemoryStore
	Logger   logger.Logger
}

func New(t testing.TB) *Fixture {
	t.Helper()
	log := logger.NewTestLogger(t)
	f := &Fixture{
		Repo:     artifacts.NewMemoryRepository(models.Artifact{ID: ArtifactID, BotID: "BOT1", Locale: "en_US", Status: models.StatusPending}),
		Platform: lextest.New(),
		Model:    oracletest.New(),
		Store:    NewMemoryStore(),
		Logger:   log,
	}
	f.Tracker = artifacts.NewTracker(f.Repo, log)
	f.Oracle = oracle.NewClient(f.Model, registry.Default(), log)
	f.Mutator = mutator.New(f.Platform, f.Oracle, log)
	return f
}

// Event is the first event of a process for the fixture's artifact.
func (f *Fixture) Event() *models.StageEvent {
	return &models.StageEvent{Bot: models.BotRef{ArtifactID: ArtifactID}}
}

// Artifact reads the current artifact.
func (f *Fixture) Artifact(t testing.TB) *models.Artifact {
	t.Helper()
	a, err := f.Repo.Get(context.Background(), ArtifactID)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	return a
}

// SampleBundle has two custom slot types and three intents; BookHotel owns
// a custom-typed and a built-in-typed slot.
func SampleBundle() models.Bundle {
	return models.Bundle{
		SlotTypes: []models.SlotTypeDefinition{
			{Name: "City", Values: []models.SlotTypeValue{{Value: "Paris"}, {Value: "Berlin"}}},
			{Name: "RoomType", Values: []models.SlotTypeValue{{Value: "single"}, {Value: "double"}}},
		},
		Intents: []models.IntentDefinition{
			{Name: "BookHotel", SampleUtterances: []string{"book a hotel", "I need a room"}},
			{Name: "CancelBooking", SampleUtterances: []string{"cancel my booking", "Book a hotel"}},
			{Name: "Greeting", SampleUtterances: []string{"hello", "hi"}},
		},
		Slots: []models.SlotDefinition{
			{Name: "Location", IntentName: "BookHotel", SlotTypeName: "City", Required: true, Prompt: "Which city?"},
			{Name: "CheckIn", IntentName: "BookHotel", SlotTypeName: "AMAZON.Date", Required: true, Prompt: "When do you arrive?"},
		},
	}
}

var _ aws.ObjectStore = (*MemoryStore)(nil)

// MemoryStore is an aws.ObjectStore backed by a map.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *MemoryStore) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = append([]byte(nil), body...)
	s.types[bucket+"/"+key] = contentType
	return nil
}

func (s *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("no such key %s/%s", bucket, key)
	}
	return body, nil
}

// Keys lists every stored object as bucket/key.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
