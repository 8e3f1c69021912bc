package services

import (
	"sort"
	"strings"
	"time"
)

type EncounterStore interface {
	InsertEncounter(lg *EncounterLog) (*EncounterLog, error)
	GetEncounter(id string) (*EncounterLog, error)
	ListEncounters(userID string) ([]*EncounterLog, error)
	DeleteEncounter(id string) (bool, error)
	AddAudit(entry AuditEntry)
}

// EncounterService owns the encounter log collection for a user.
type EncounterService struct {
	store EncounterStore
	now   func() time.Time
	idGen func() string
}

func NewEncounterService(store EncounterStore) *EncounterService {
	return &EncounterService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(12) },
	}
}

func validYesNoNotSure(v YesNoNotSure) bool {
	return v == AnswerYes || v == AnswerNo || v == AnswerNotSure
}

// Create validates and stores a new entry. The entry form is the only
// place the none-vs-methods exclusivity is enforced; the risk engine
// takes records as given.
func (s *EncounterService) Create(userID string, lg *EncounterLog) (*EncounterLog, error) {
	if userID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if lg == nil {
		return nil, NewInvalidError("entry required")
	}

	entry := *lg
	entry.ID = s.idGen()
	entry.UserID = userID
	entry.CreatedAt = s.now()
	entry.PartnerName = strings.TrimSpace(entry.PartnerName)

	if strings.TrimSpace(entry.Date) == "" {
		return nil, NewInvalidError("date required")
	}
	if _, err := ParseLogDate(entry.Date); err != nil {
		return nil, err
	}

	switch entry.PartnerSTIStatus.Status {
	case "":
		entry.PartnerSTIStatus.Status = STIClean
	case STIClean, STINotSure, STIPositive:
	default:
		return nil, NewInvalidError("invalid partner STI status")
	}
	if entry.PartnerSTIStatus.Status != STIPositive {
		entry.PartnerSTIStatus.Details = ""
	}

	if entry.ProtectionFailure == "" {
		entry.ProtectionFailure = AnswerNo
	}
	if !validYesNoNotSure(entry.ProtectionFailure) {
		return nil, NewInvalidError("invalid protection failure answer")
	}
	if entry.FluidsExchanged.Ejaculation == "" {
		entry.FluidsExchanged.Ejaculation = AnswerNo
	}
	if entry.FluidsExchanged.BarrierExchange == "" {
		entry.FluidsExchanged.BarrierExchange = AnswerNo
	}
	if !validYesNoNotSure(entry.FluidsExchanged.Ejaculation) || !validYesNoNotSure(entry.FluidsExchanged.BarrierExchange) {
		return nil, NewInvalidError("invalid fluids exchanged answer")
	}

	if entry.ProtectionUsed.None && entry.ProtectionUsed.Any() {
		return nil, NewInvalidError("protection 'none' cannot be combined with other methods")
	}

	switch entry.TestingReminder {
	case "":
		entry.TestingReminder = ReminderNone
	case ReminderMonthly, ReminderQuarterly, ReminderNone:
	default:
		return nil, NewInvalidError("invalid testing reminder option")
	}

	stored, err := s.store.InsertEncounter(&entry)
	if err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: userID, Action: "log_create", Target: stored.ID})
	return stored, nil
}

// List returns the user's entries, most recent date first. Ties fall back
// to creation time so same-day entries keep a stable order.
func (s *EncounterService) List(userID string) ([]*EncounterLog, error) {
	if userID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	logs, err := s.store.ListEncounters(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Date != logs[j].Date {
			return logs[i].Date > logs[j].Date
		}
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	return logs, nil
}

// ListByMonth returns the user's entries within one calendar month,
// ascending by date, for calendar rendering.
func (s *EncounterService) ListByMonth(userID string, year int, month time.Month) ([]*EncounterLog, error) {
	logs, err := s.List(userID)
	if err != nil {
		return nil, err
	}
	out := make([]*EncounterLog, 0, len(logs))
	for _, lg := range logs {
		d, err := ParseLogDate(lg.Date)
		if err != nil {
			return nil, err
		}
		if d.Year() == year && d.Month() == month {
			out = append(out, lg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *EncounterService) Get(userID, id string) (*EncounterLog, error) {
	if userID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	lg, err := s.store.GetEncounter(id)
	if err != nil {
		return nil, err
	}
	if lg == nil || lg.UserID != userID {
		return nil, NewNotFoundError("entry not found")
	}
	return lg, nil
}

func (s *EncounterService) Delete(userID, id string) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}
	ok, err := s.store.DeleteEncounter(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("entry not found")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: userID, Action: "log_delete", Target: id})
	return nil
}
