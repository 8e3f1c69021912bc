package services

import (
	"strings"
	"time"
)

var validSexes = map[string]struct{}{
	"male": {}, "female": {}, "non-binary": {}, "other": {}, "prefer-not-to-say": {},
}

var validOrientations = map[string]struct{}{
	"straight": {}, "gay": {}, "lesbian": {}, "bisexual": {}, "pansexual": {},
	"asexual": {}, "other": {}, "prefer-not-to-say": {},
}

type ProfileStore interface {
	GetProfile(userID string) (*Profile, error)
	UpsertProfile(p *Profile) error
	DeleteProfile(userID string) (bool, error)
	ListEncounters(userID string) ([]*EncounterLog, error)
	DeleteEncountersByUser(userID string) (int, error)
	AddAudit(entry AuditEntry)
}

// ProfileService owns the onboarding profile plus the self-service data
// rights operations (export everything, erase everything).
type ProfileService struct {
	store ProfileStore
	now   func() time.Time
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProfileService) Get(userID string) (*Profile, error) {
	if userID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	p, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("profile not found")
	}
	return p, nil
}

// Upsert validates and stores onboarding data. Partial updates are fine:
// callers send the whole profile as currently known.
func (s *ProfileService) Upsert(userID string, p *Profile) (*Profile, error) {
	if userID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if p == nil {
		return nil, NewInvalidError("profile required")
	}

	prof := *p
	prof.UserID = userID
	prof.Name = strings.TrimSpace(prof.Name)
	prof.UpdatedAt = s.now()

	if prof.Age < 0 || prof.Age > 120 {
		return nil, NewInvalidError("invalid age")
	}
	if prof.Sex != "" {
		if _, ok := validSexes[prof.Sex]; !ok {
			return nil, NewInvalidError("invalid sex")
		}
	}
	if prof.Orientation != "" {
		if _, ok := validOrientations[prof.Orientation]; !ok {
			return nil, NewInvalidError("invalid orientation")
		}
	}
	if prof.LastTestedDate != "" {
		if _, err := ParseLogDate(prof.LastTestedDate); err != nil {
			return nil, err
		}
	}
	for name, rec := range prof.TestHistory {
		if rec.Date == "" {
			continue
		}
		if _, err := ParseLogDate(rec.Date); err != nil {
			return nil, NewInvalidError("invalid test history date for " + name)
		}
	}

	// Onboarding completion survives profile edits.
	if existing, err := s.store.GetProfile(userID); err == nil && existing != nil && existing.OnboardingComplete {
		prof.OnboardingComplete = true
	}

	if err := s.store.UpsertProfile(&prof); err != nil {
		return nil, err
	}
	return &prof, nil
}

// CompleteOnboarding marks the profile finished. Name and age are the
// minimum the onboarding flow collects before landing on the dashboard.
func (s *ProfileService) CompleteOnboarding(userID string) (*Profile, error) {
	p, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if p.Name == "" || p.Age == 0 {
		return nil, NewInvalidError("name and age required to complete onboarding")
	}
	p.OnboardingComplete = true
	p.UpdatedAt = s.now()
	if err := s.store.UpsertProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// LastTested returns the profile's last-tested date when recorded, nil
// otherwise. A missing profile reads as never tested.
func (s *ProfileService) LastTested(userID string) (*time.Time, error) {
	p, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.LastTestedDate == "" {
		return nil, nil
	}
	d, err := ParseLogDate(p.LastTestedDate)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type ProfileExport struct {
	Profile    *Profile        `json:"profile"`
	Encounters []*EncounterLog `json:"encounters"`
}

// SelfExport returns everything stored about the user.
func (s *ProfileService) SelfExport(userID string) (*ProfileExport, error) {
	p, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListEncounters(userID)
	if err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: userID, Action: "self_export", Target: userID})
	return &ProfileExport{Profile: p, Encounters: logs}, nil
}

// Erase hard-deletes the profile and every encounter entry.
func (s *ProfileService) Erase(userID string) error {
	if userID == "" {
		return NewForbiddenError("unauthorized")
	}
	n, err := s.store.DeleteEncountersByUser(userID)
	if err != nil {
		return err
	}
	ok, err := s.store.DeleteProfile(userID)
	if err != nil {
		return err
	}
	if !ok && n == 0 {
		return NewNotFoundError("nothing stored for user")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: userID, Action: "self_erase", Target: userID})
	return nil
}
