// Package memory contains in-memory persistence for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/court-case-tracker/internal/courtcase"
)

// CaseStore keeps court cases in a map keyed by case number.
type CaseStore struct {
	mu    sync.RWMutex
	cases map[string]courtcase.CourtCase
}

// NewCaseStore constructs an empty CaseStore.
func NewCaseStore() *CaseStore {
	return &CaseStore{
		cases: make(map[string]courtcase.CourtCase),
	}
}

// UpsertMany replaces each record by case number, applying them in order.
func (s *CaseStore) UpsertMany(_ context.Context, cases []courtcase.CourtCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cases {
		s.cases[c.CaseNumber] = c
	}
	return nil
}

// FindManyByCaseNumbers returns stored records in request order, once per case number.
func (s *CaseStore) FindManyByCaseNumbers(_ context.Context, caseNumbers []string) ([]courtcase.CourtCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []courtcase.CourtCase
	seen := make(map[string]struct{}, len(caseNumbers))
	for _, n := range caseNumbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if c, ok := s.cases[n]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Ping always succeeds.
func (s *CaseStore) Ping(context.Context) error {
	return nil
}

// Len reports the number of stored records.
func (s *CaseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}
