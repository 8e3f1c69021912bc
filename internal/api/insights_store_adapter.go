package api

import "github.com/wildhacks-2025/app/internal/services"

type insightsStoreAdapter struct {
	store Store
}

func newInsightsStoreAdapter(store Store) services.InsightsStore {
	return &insightsStoreAdapter{store: store}
}

func (a *insightsStoreAdapter) ListEncounters(userID string) ([]*services.EncounterLog, error) {
	return a.store.ListEncounters(userID)
}

func (a *insightsStoreAdapter) GetProfile(userID string) (*services.Profile, error) {
	return a.store.GetProfile(userID)
}

var _ services.InsightsStore = (*insightsStoreAdapter)(nil)
