package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/matchcv/internal/matching"
)

// ProfileStore holds the job profiles the server scores against. Profiles
// keep the order they were loaded in.
type ProfileStore struct {
	profiles map[string]matching.JobProfile
	order    []string
	mu       sync.RWMutex
}

func New() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]matching.JobProfile),
	}
}

func (s *ProfileStore) Get(name string) (matching.JobProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, exists := s.profiles[name]
	return profile, exists
}

// Replace swaps the whole profile set. A repeated name keeps its first
// position and its last definition.
func (s *ProfileStore) Replace(profiles []matching.JobProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = make(map[string]matching.JobProfile, len(profiles))
	s.order = make([]string, 0, len(profiles))
	for _, p := range profiles {
		if _, exists := s.profiles[p.Name]; !exists {
			s.order = append(s.order, p.Name)
		}
		s.profiles[p.Name] = p
	}
}

func (s *ProfileStore) GetAll() []matching.JobProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]matching.JobProfile, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.profiles[name])
	}
	return result
}

func (s *ProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
