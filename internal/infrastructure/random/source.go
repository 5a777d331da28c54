package random

import (
	"sync"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
)

// Source is a goroutine-safe placeholder generator. A zero seed draws from a
// crypto-seeded generator; any other seed makes the sequence reproducible.
type Source struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

var _ anomaly.Random = (*Source)(nil)

func NewSource(seed int64) *Source {
	return &Source{faker: gofakeit.New(seed)}
}

func (s *Source) IntRange(min, max int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.IntRange(min, max)
}

func (s *Source) Float64Range(min, max float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.Float64Range(min, max)
}
