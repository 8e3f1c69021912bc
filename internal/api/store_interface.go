package api

import "github.com/wildhacks-2025/app/internal/services"

// Store is the persistence boundary the router wires services against.
// Implementations: the in-memory store below (tests, dev) and the SQLite
// store in internal/db.
type Store interface {
	AddUser(u *services.User) error
	FindUserByEmail(email string) (*services.User, error)

	GetProfile(userID string) (*services.Profile, error)
	UpsertProfile(p *services.Profile) error
	DeleteProfile(userID string) (bool, error)

	InsertEncounter(lg *services.EncounterLog) (*services.EncounterLog, error)
	GetEncounter(id string) (*services.EncounterLog, error)
	ListEncounters(userID string) ([]*services.EncounterLog, error)
	DeleteEncounter(id string) (bool, error)
	DeleteEncountersByUser(userID string) (int, error)

	AddAudit(entry services.AuditEntry)
	ListAudit() []services.AuditEntry
}

var _ Store = (*MemoryStore)(nil)
