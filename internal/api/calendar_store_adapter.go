package api

import "github.com/wildhacks-2025/app/internal/services"

type calendarStoreAdapter struct {
	store Store
}

func newCalendarStoreAdapter(store Store) services.CalendarStore {
	return &calendarStoreAdapter{store: store}
}

func (a *calendarStoreAdapter) ListEncounters(userID string) ([]*services.EncounterLog, error) {
	return a.store.ListEncounters(userID)
}

var _ services.CalendarStore = (*calendarStoreAdapter)(nil)
