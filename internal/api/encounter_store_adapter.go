package api

import "github.com/wildhacks-2025/app/internal/services"

type encounterStoreAdapter struct {
	store Store
}

func newEncounterStoreAdapter(store Store) services.EncounterStore {
	return &encounterStoreAdapter{store: store}
}

func (a *encounterStoreAdapter) InsertEncounter(lg *services.EncounterLog) (*services.EncounterLog, error) {
	return a.store.InsertEncounter(lg)
}

func (a *encounterStoreAdapter) GetEncounter(id string) (*services.EncounterLog, error) {
	return a.store.GetEncounter(id)
}

func (a *encounterStoreAdapter) ListEncounters(userID string) ([]*services.EncounterLog, error) {
	return a.store.ListEncounters(userID)
}

func (a *encounterStoreAdapter) DeleteEncounter(id string) (bool, error) {
	return a.store.DeleteEncounter(id)
}

func (a *encounterStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(entry)
}

var _ services.EncounterStore = (*encounterStoreAdapter)(nil)
