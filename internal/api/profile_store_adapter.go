package api

import "github.com/wildhacks-2025/app/internal/services"

type profileStoreAdapter struct {
	store Store
}

func newProfileStoreAdapter(store Store) services.ProfileStore {
	return &profileStoreAdapter{store: store}
}

func (a *profileStoreAdapter) GetProfile(userID string) (*services.Profile, error) {
	return a.store.GetProfile(userID)
}

func (a *profileStoreAdapter) UpsertProfile(p *services.Profile) error {
	return a.store.UpsertProfile(p)
}

func (a *profileStoreAdapter) DeleteProfile(userID string) (bool, error) {
	return a.store.DeleteProfile(userID)
}

func (a *profileStoreAdapter) ListEncounters(userID string) ([]*services.EncounterLog, error) {
	return a.store.ListEncounters(userID)
}

func (a *profileStoreAdapter) DeleteEncountersByUser(userID string) (int, error) {
	return a.store.DeleteEncountersByUser(userID)
}

func (a *profileStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(entry)
}

var _ services.ProfileStore = (*profileStoreAdapter)(nil)
