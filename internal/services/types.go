package services

import "time"

// STIStatus is a partner's self-reported testing status.
type STIStatus string

const (
	STIClean    STIStatus = "Clean"
	STINotSure  STIStatus = "Not sure"
	STIPositive STIStatus = "Positive"
)

// YesNoNotSure is the three-state answer used across encounter questions.
type YesNoNotSure string

const (
	AnswerYes     YesNoNotSure = "Yes"
	AnswerNo      YesNoNotSure = "No"
	AnswerNotSure YesNoNotSure = "Not sure"
)

// ReminderOption controls personalized testing reminders for an entry.
type ReminderOption string

const (
	ReminderMonthly   ReminderOption = "Monthly"
	ReminderQuarterly ReminderOption = "Quarterly"
	ReminderNone      ReminderOption = "No"
)

// PartnerSTIStatus carries the partner's status and optional details when positive.
type PartnerSTIStatus struct {
	Status  STIStatus `json:"status"`
	Details string    `json:"details,omitempty"`
}

// ProtectionUsed is the multi-select set of protection methods for an encounter.
// None declares the absence of any method and may not be combined with the others.
type ProtectionUsed struct {
	Condom       bool `json:"condom"`
	PreP         bool `json:"preP"`
	Pep          bool `json:"pep"`
	BirthControl bool `json:"birthControl"`
	Pill         bool `json:"pill"`
	IUD          bool `json:"iud"`
	Implant      bool `json:"implant"`
	DoxyPep      bool `json:"doxyPep"`
	Withdrawal   bool `json:"withdrawal"`
	None         bool `json:"none"`
}

// Any reports whether at least one method besides None is selected.
func (p ProtectionUsed) Any() bool {
	return p.Condom || p.PreP || p.Pep || p.BirthControl || p.Pill ||
		p.IUD || p.Implant || p.DoxyPep || p.Withdrawal
}

// SexTypes is the multi-select set of activity categories for an encounter.
type SexTypes struct {
	Kissing             bool   `json:"kissing"`
	OralSexGiving       bool   `json:"oralSexGiving"`
	OralSexReceiving    bool   `json:"oralSexReceiving"`
	VaginalSexGiving    bool   `json:"vaginalSexGiving"`
	VaginalSexReceiving bool   `json:"vaginalSexReceiving"`
	AnalSexGiving       bool   `json:"analSexGiving"`
	AnalSexReceiving    bool   `json:"analSexReceiving"`
	MutualMasturbation  bool   `json:"mutualMasturbation"`
	ToyUse              bool   `json:"toyUse"`
	Other               string `json:"other,omitempty"`
}

// FluidsExchanged records fluid-exchange answers for an encounter.
type FluidsExchanged struct {
	Ejaculation     YesNoNotSure `json:"ejaculation"`
	BarrierExchange YesNoNotSure `json:"barrierExchange"`
}

// EncounterLog is one user-submitted record describing a single encounter.
// Records are immutable once created; corrections are delete + re-log.
type EncounterLog struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id,omitempty"`
	Date              string           `json:"date"` // YYYY-MM-DD, date-only semantics
	Time              string           `json:"time,omitempty"`
	PartnerName       string           `json:"partner_name"`
	PartnerSTIStatus  PartnerSTIStatus `json:"partner_sti_status"`
	ProtectionUsed    ProtectionUsed   `json:"protection_used"`
	ProtectionFailure YesNoNotSure     `json:"protection_failure"`
	SexTypes          SexTypes         `json:"sex_types"`
	FluidsExchanged   FluidsExchanged  `json:"fluids_exchanged"`
	TestingReminder   ReminderOption   `json:"testing_reminder,omitempty"`
	DiscreetIcon      bool             `json:"discreet_icon,omitempty"`
	CreatedAt         time.Time        `json:"created_at,omitempty"`
}

// TestRecord is one entry of a profile's test history.
type TestRecord struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Result string `json:"result"`
}

// Profile holds the onboarding data for a local user.
type Profile struct {
	UserID                string                `json:"user_id"`
	Name                  string                `json:"name"`
	Age                   int                   `json:"age,omitempty"`
	Sex                   string                `json:"sex,omitempty"`
	Orientation           string                `json:"orientation,omitempty"`
	LastTestedDate        string                `json:"last_tested_date,omitempty"` // YYYY-MM-DD
	TestResult            string                `json:"test_result,omitempty"`
	Medications           []string              `json:"medications,omitempty"`
	STITestsReceived      []string              `json:"sti_tests_received,omitempty"`
	ChronicConditions     []string              `json:"chronic_conditions,omitempty"`
	OtherConditionDetails string                `json:"other_condition_details,omitempty"`
	TestHistory           map[string]TestRecord `json:"test_history,omitempty"`
	OnboardingComplete    bool                  `json:"onboarding_complete"`
	UpdatedAt             time.Time             `json:"updated_at,omitempty"`
}

// User is a local account protecting the stored health data.
type User struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

// AuditEntry records privacy-relevant actions (create, delete, export).
type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
