package api

import (
	"sync"

	"github.com/wildhacks-2025/app/internal/services"
)

// MemoryStore keeps everything in process. It backs tests and local dev
// runs without a database file; the SQLite store is the durable sibling.
type MemoryStore struct {
	mu           sync.RWMutex
	usersByEmail map[string]*services.User
	profiles     map[string]*services.Profile
	encounters   map[string]*services.EncounterLog
	audit        []services.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByEmail: map[string]*services.User{},
		profiles:     map[string]*services.Profile{},
		encounters:   map[string]*services.EncounterLog{},
	}
}

func (s *MemoryStore) AddUser(u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *u
	s.usersByEmail[u.Email] = &copy
	return nil
}

func (s *MemoryStore) FindUserByEmail(email string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.usersByEmail[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetProfile(userID string) (*services.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpsertProfile(p *services.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *p
	s.profiles[p.UserID] = &copy
	return nil
}

func (s *MemoryStore) DeleteProfile(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return false, nil
	}
	delete(s.profiles, userID)
	return true, nil
}

func (s *MemoryStore) InsertEncounter(lg *services.EncounterLog) (*services.EncounterLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *lg
	s.encounters[lg.ID] = &copy
	out := copy
	return &out, nil
}

func (s *MemoryStore) GetEncounter(id string) (*services.EncounterLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lg, ok := s.encounters[id]; ok {
		copy := *lg
		return &copy, nil
	}
	return nil, nil
}

func (s *MemoryStore) ListEncounters(userID string) ([]*services.EncounterLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*services.EncounterLog, 0)
	for _, lg := range s.encounters {
		if lg.UserID == userID {
			copy := *lg
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteEncounter(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.encounters[id]; !ok {
		return false, nil
	}
	delete(s.encounters, id)
	return true, nil
}

func (s *MemoryStore) DeleteEncountersByUser(userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, lg := range s.encounters {
		if lg.UserID == userID {
			delete(s.encounters, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) AddAudit(entry services.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
}

func (s *MemoryStore) ListAudit() []services.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]services.AuditEntry(nil), s.audit...)
}
