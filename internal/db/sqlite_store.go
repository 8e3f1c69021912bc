package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wildhacks-2025/app/internal/api"
	"github.com/wildhacks-2025/app/internal/services"
)

// SQLiteStore persists accounts, profiles and encounter logs in a single
// SQLite file. Nested flag sets travel as JSON in TEXT columns; dates keep
// their YYYY-MM-DD string form so ordering by date stays lexical.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeJSON(ns sql.NullString, out any) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return
	}
	if err := json.Unmarshal([]byte(ns.String), out); err != nil {
		log.Printf("sqlite store: decode json column: %v", err)
	}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) AddUser(u *services.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, u.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return services.NewConflictError("email already registered")
	}
	return err
}

func (s *SQLiteStore) FindUserByEmail(email string) (*services.User, error) {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, created_at FROM users WHERE email = ?`, email)
	var u services.User
	var created string
	err := row.Scan(&u.ID, &u.Email, &u.PassHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTimestamp(created)
	return &u, nil
}

func (s *SQLiteStore) GetProfile(userID string) (*services.Profile, error) {
	row := s.db.QueryRow(`SELECT user_id, name, age, sex, orientation, last_tested_date,
		test_result, medications, sti_tests_received, chronic_conditions,
		other_condition_details, test_history, onboarding_complete, updated_at
		FROM profiles WHERE user_id = ?`, userID)

	var p services.Profile
	var name, sex, orientation, lastTested, testResult, otherDetails sql.NullString
	var meds, tests, conditions, history sql.NullString
	var age sql.NullInt64
	var onboarded int64
	var updated string
	err := row.Scan(&p.UserID, &name, &age, &sex, &orientation, &lastTested,
		&testResult, &meds, &tests, &conditions, &otherDetails, &history,
		&onboarded, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Name = name.String
	p.Age = int(age.Int64)
	p.Sex = sex.String
	p.Orientation = orientation.String
	p.LastTestedDate = lastTested.String
	p.TestResult = testResult.String
	p.OtherConditionDetails = otherDetails.String
	decodeJSON(meds, &p.Medications)
	decodeJSON(tests, &p.STITestsReceived)
	decodeJSON(conditions, &p.ChronicConditions)
	decodeJSON(history, &p.TestHistory)
	p.OnboardingComplete = int64ToBool(onboarded)
	p.UpdatedAt = parseTimestamp(updated)
	return &p, nil
}

func (s *SQLiteStore) UpsertProfile(p *services.Profile) error {
	meds, err := encodeJSON(p.Medications)
	if err != nil {
		return err
	}
	tests, err := encodeJSON(p.STITestsReceived)
	if err != nil {
		return err
	}
	conditions, err := encodeJSON(p.ChronicConditions)
	if err != nil {
		return err
	}
	history, err := encodeJSON(p.TestHistory)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO profiles (user_id, name, age, sex, orientation,
		last_tested_date, test_result, medications, sti_tests_received,
		chronic_conditions, other_condition_details, test_history,
		onboarding_complete, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name, age = excluded.age, sex = excluded.sex,
			orientation = excluded.orientation,
			last_tested_date = excluded.last_tested_date,
			test_result = excluded.test_result,
			medications = excluded.medications,
			sti_tests_received = excluded.sti_tests_received,
			chronic_conditions = excluded.chronic_conditions,
			other_condition_details = excluded.other_condition_details,
			test_history = excluded.test_history,
			onboarding_complete = excluded.onboarding_complete,
			updated_at = excluded.updated_at`,
		p.UserID, toNullString(p.Name), p.Age, toNullString(p.Sex),
		toNullString(p.Orientation), toNullString(p.LastTestedDate),
		toNullString(p.TestResult), meds, tests, conditions,
		toNullString(p.OtherConditionDetails), history,
		boolToInt64(p.OnboardingComplete),
		p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) DeleteProfile(userID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const encounterColumns = `id, user_id, date, time, partner_name, partner_sti_status,
	protection_used, protection_failure, sex_types, fluids_exchanged,
	testing_reminder, discreet_icon, created_at`

func (s *SQLiteStore) InsertEncounter(lg *services.EncounterLog) (*services.EncounterLog, error) {
	partner, err := encodeJSON(lg.PartnerSTIStatus)
	if err != nil {
		return nil, err
	}
	protection, err := encodeJSON(lg.ProtectionUsed)
	if err != nil {
		return nil, err
	}
	sexTypes, err := encodeJSON(lg.SexTypes)
	if err != nil {
		return nil, err
	}
	fluids, err := encodeJSON(lg.FluidsExchanged)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(`INSERT INTO encounters (`+encounterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lg.ID, lg.UserID, lg.Date, toNullString(lg.Time),
		toNullString(lg.PartnerName), partner, protection,
		toNullString(string(lg.ProtectionFailure)), sexTypes, fluids,
		toNullString(string(lg.TestingReminder)), boolToInt64(lg.DiscreetIcon),
		lg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	out := *lg
	return &out, nil
}

func scanEncounter(scan func(dest ...any) error) (*services.EncounterLog, error) {
	var lg services.EncounterLog
	var timeOfDay, partnerName, failure, reminder sql.NullString
	var partner, protection, sexTypes, fluids sql.NullString
	var discreet int64
	var created string
	err := scan(&lg.ID, &lg.UserID, &lg.Date, &timeOfDay, &partnerName,
		&partner, &protection, &failure, &sexTypes, &fluids, &reminder,
		&discreet, &created)
	if err != nil {
		return nil, err
	}
	lg.Time = timeOfDay.String
	lg.PartnerName = partnerName.String
	decodeJSON(partner, &lg.PartnerSTIStatus)
	decodeJSON(protection, &lg.ProtectionUsed)
	lg.ProtectionFailure = services.YesNoNotSure(failure.String)
	decodeJSON(sexTypes, &lg.SexTypes)
	decodeJSON(fluids, &lg.FluidsExchanged)
	lg.TestingReminder = services.ReminderOption(reminder.String)
	lg.DiscreetIcon = int64ToBool(discreet)
	lg.CreatedAt = parseTimestamp(created)
	return &lg, nil
}

func (s *SQLiteStore) GetEncounter(id string) (*services.EncounterLog, error) {
	row := s.db.QueryRow(`SELECT `+encounterColumns+` FROM encounters WHERE id = ?`, id)
	lg, err := scanEncounter(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lg, nil
}

func (s *SQLiteStore) ListEncounters(userID string) ([]*services.EncounterLog, error) {
	rows, err := s.db.Query(`SELECT `+encounterColumns+` FROM encounters
		WHERE user_id = ? ORDER BY date, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*services.EncounterLog, 0)
	for rows.Next() {
		lg, err := scanEncounter(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, lg)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteEncounter(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM encounters WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) DeleteEncountersByUser(userID string) (int, error) {
	res, err := s.db.Exec(`DELETE FROM encounters WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) AddAudit(entry services.AuditEntry) {
	_, err := s.db.Exec(`INSERT INTO audit_log (at, actor, action, target, note)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Time.UTC().Format(time.RFC3339Nano), entry.Actor, entry.Action,
		toNullString(entry.Target), toNullString(entry.Note),
	)
	if err != nil {
		log.Printf("sqlite store: add audit: %v", err)
	}
}

func (s *SQLiteStore) ListAudit() []services.AuditEntry {
	rows, err := s.db.Query(`SELECT at, actor, action, target, note FROM audit_log ORDER BY id`)
	if err != nil {
		log.Printf("sqlite store: list audit: %v", err)
		return nil
	}
	defer rows.Close()
	var out []services.AuditEntry
	for rows.Next() {
		var e services.AuditEntry
		var at string
		var target, note sql.NullString
		if err := rows.Scan(&at, &e.Actor, &e.Action, &target, &note); err != nil {
			log.Printf("sqlite store: scan audit: %v", err)
			return out
		}
		e.Time = parseTimestamp(at)
		e.Target = target.String
		e.Note = note.String
		out = append(out, e)
	}
	return out
}
