package catalog

import (
	"slices"
	"sync"
)

// SelectDefaultSchema picks DefaultSchema when present, otherwise the first schema.
// It reports false for an empty list.
func SelectDefaultSchema(schemas []string) (string, bool) {
	if slices.Contains(schemas, DefaultSchema) {
		return DefaultSchema, true
	}
	if len(schemas) > 0 {
		return schemas[0], true
	}
	return "", false
}

// Selection tracks the currently selected schema. Every change bumps the epoch so results
// requested under an earlier selection can be recognised and dropped.
type Selection struct {
	mu     sync.Mutex
	schema string
	epoch  uint64
}

func (s *Selection) Select(schema string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = schema
	s.epoch++
	return s.epoch
}

func (s *Selection) Current() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema, s.epoch
}

func (s *Selection) IsCurrent(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch == s.epoch
}
