package policy

// Store exposes policy retrieval for the dialogue service and HTTP handlers.
type Store interface {
	List() []Policy
	FindByID(id string) (Policy, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Policy
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied policies.
func NewMemoryStore(items []Policy) *MemoryStore {
	return &MemoryStore{items: append([]Policy(nil), items...)}
}

// List returns the policy catalogue.
func (s *MemoryStore) List() []Policy {
	return append([]Policy(nil), s.items...)
}

// FindByID looks up a policy by identifier.
func (s *MemoryStore) FindByID(id string) (Policy, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Policy{}, false
}
