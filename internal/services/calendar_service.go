package services

import "time"

type CalendarStore interface {
	ListEncounters(userID string) ([]*EncounterLog, error)
}

// CalendarService produces the month grid and week strip the calendar
// screens render, with encounter dates marked.
type CalendarService struct {
	store CalendarStore
	now   func() time.Time
}

func NewCalendarService(store CalendarStore) *CalendarService {
	return &CalendarService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CalendarDay is one cell of a month grid or week strip.
type CalendarDay struct {
	Day            int    `json:"day"`
	Date           string `json:"date"` // YYYY-MM-DD
	IsCurrentMonth bool   `json:"is_current_month"`
	IsToday        bool   `json:"is_today"`
	IsMarked       bool   `json:"is_marked"`
}

type MonthView struct {
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	MonthName string        `json:"month_name"`
	Days      []CalendarDay `json:"days"`
}

type WeekDay struct {
	CalendarDay
	Letter string `json:"letter"` // S M T W T F S
}

type WeekView struct {
	Start string    `json:"start"` // YYYY-MM-DD, the Sunday the strip begins on
	Days  []WeekDay `json:"days"`
}

var dayLetters = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// MonthName returns the English month name for a 1-based month number.
func MonthName(month time.Month) string {
	return month.String()
}

func (s *CalendarService) markedDates(userID string) (map[string]struct{}, error) {
	logs, err := s.store.ListEncounters(userID)
	if err != nil {
		return nil, err
	}
	marked := make(map[string]struct{}, len(logs))
	for _, lg := range logs {
		d, err := ParseLogDate(lg.Date)
		if err != nil {
			return nil, err
		}
		marked[d.Format("2006-01-02")] = struct{}{}
	}
	return marked, nil
}

func (s *CalendarService) cell(d time.Time, currentMonth time.Month, today time.Time, marked map[string]struct{}) CalendarDay {
	key := d.Format("2006-01-02")
	_, isMarked := marked[key]
	return CalendarDay{
		Day:            d.Day(),
		Date:           key,
		IsCurrentMonth: d.Month() == currentMonth,
		IsToday:        d.Equal(today),
		IsMarked:       isMarked,
	}
}

// MonthView builds the full grid for one month: leading days from the
// previous month down to the first Sunday, the month itself, then
// trailing days padding the last row to seven columns.
func (s *CalendarService) MonthView(userID string, year int, month time.Month) (*MonthView, error) {
	if month < time.January || month > time.December {
		return nil, NewInvalidError("invalid month")
	}
	marked, err := s.markedDates(userID)
	if err != nil {
		return nil, err
	}
	today := DateOnly(s.now())

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	daysInMonth := first.AddDate(0, 1, -1).Day()
	cells := int(first.Weekday()) + daysInMonth
	rows := (cells + 6) / 7

	days := make([]CalendarDay, 0, rows*7)
	for d := start; len(days) < rows*7; d = d.AddDate(0, 0, 1) {
		days = append(days, s.cell(d, month, today, marked))
	}

	return &MonthView{
		Year:      year,
		Month:     int(month),
		MonthName: MonthName(month),
		Days:      days,
	}, nil
}

// WeekView builds the seven-day strip containing anchor, starting on
// Sunday.
func (s *CalendarService) WeekView(userID string, anchor time.Time) (*WeekView, error) {
	marked, err := s.markedDates(userID)
	if err != nil {
		return nil, err
	}
	today := DateOnly(s.now())

	day := DateOnly(anchor)
	start := day.AddDate(0, 0, -int(day.Weekday()))

	days := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		days = append(days, WeekDay{
			CalendarDay: s.cell(d, d.Month(), today, marked),
			Letter:      dayLetters[i],
		})
	}
	return &WeekView{Start: start.Format("2006-01-02"), Days: days}, nil
}
