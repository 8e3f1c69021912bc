package api

import "github.com/wildhacks-2025/app/internal/services"

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindUserByEmail(email string) (*services.User, error) {
	return a.store.FindUserByEmail(email)
}

func (a *authStoreAdapter) AddUser(u *services.User) error {
	return a.store.AddUser(u)
}

var _ services.AuthStore = (*authStoreAdapter)(nil)
