package auth

import (
	"sync"
	"time"

	"invoicely/internal/core/apperror"
	"invoicely/internal/core/id"
)

// DefaultRegistrationTTL bounds how long an unfinished sign-up is kept.
const DefaultRegistrationTTL = 30 * time.Minute

// MemoryStore keeps registrations in process memory. Entries older than the
// TTL are treated as missing and dropped on the next write.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	regs map[id.ID]Registration
}

// NewMemoryStore creates a store. A non-positive ttl uses DefaultRegistrationTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultRegistrationTTL
	}
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		regs: make(map[id.ID]Registration),
	}
}

func (s *MemoryStore) Get(regID id.ID) (Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.regs[regID]
	if !ok || s.expired(reg) {
		return Registration{}, false
	}
	return reg, true
}

func (s *MemoryStore) Put(reg Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	s.regs[reg.ID] = reg
}

func (s *MemoryStore) Update(regID id.ID, fn func(reg *Registration) error) (Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.regs[regID]
	if !ok || s.expired(reg) {
		return Registration{}, apperror.NewNotFound("registration", regID)
	}
	if err := fn(&reg); err != nil {
		return Registration{}, err
	}
	s.regs[regID] = reg
	return reg, nil
}

func (s *MemoryStore) Delete(regID id.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.regs, regID)
}

// Len returns the number of live registrations.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, reg := range s.regs {
		if !s.expired(reg) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(reg Registration) bool {
	return s.now().Sub(reg.CreatedAt) > s.ttl
}

// prune must be called with mu held.
func (s *MemoryStore) prune() {
	for k, reg := range s.regs {
		if s.expired(reg) {
			delete(s.regs, k)
		}
	}
}
