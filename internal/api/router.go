package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wildhacks-2025/app/internal/middleware"
	"github.com/wildhacks-2025/app/internal/services"
	"github.com/wildhacks-2025/app/internal/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Router wires the HTTP surface to the domain services.
type Router struct {
	auth       *services.AuthService
	encounters *services.EncounterService
	profiles   *services.ProfileService
	insights   *services.InsightsService
	calendar   *services.CalendarService
}

func NewRouter(store Store, signer services.TokenSigner) *Router {
	return &Router{
		auth:       services.NewAuthService(newAuthStoreAdapter(store), signer),
		encounters: services.NewEncounterService(newEncounterStoreAdapter(store)),
		profiles:   services.NewProfileService(newProfileStoreAdapter(store)),
		insights:   services.NewInsightsService(newInsightsStoreAdapter(store)),
		calendar:   services.NewCalendarService(newCalendarStoreAdapter(store)),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST
	mux.Handle("/api/profile", authed(rt.handleProfile))    // GET | PUT | DELETE
	mux.Handle("/api/profile/complete", authed(rt.handleCompleteOnboarding)) // POST
	mux.Handle("/api/profile/export", authed(rt.handleProfileExport))        // GET
	mux.Handle("/api/logs", authed(rt.handleLogs))           // GET | POST
	mux.Handle("/api/logs/", authed(rt.handleLogByID))       // GET | DELETE /api/logs/{id}
	mux.Handle("/api/insights", authed(rt.handleInsights))   // GET
	mux.Handle("/api/calendar/month", authed(rt.handleMonth)) // GET ?year=&month=
	mux.Handle("/api/calendar/week", authed(rt.handleWeek))   // GET ?date=
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the services error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid, services.ErrorDateParse:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]any{"error": se.Message, "code": se.Code})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return services.NewInvalidError(err.Error())
	}
	if err := validate.Struct(v); err != nil {
		return services.NewInvalidError(err.Error())
	}
	return nil
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return "", false
	}
	return uid, true
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID})
}

type profileResponse struct {
	*services.Profile
	SexLabel         string `json:"sex_label,omitempty"`
	OrientationLabel string `json:"orientation_label,omitempty"`
	TestResultLabel  string `json:"test_result_label,omitempty"`
}

func newProfileResponse(p *services.Profile) profileResponse {
	return profileResponse{
		Profile:          p,
		SexLabel:         utils.FormatSex(p.Sex),
		OrientationLabel: utils.FormatOrientation(p.Orientation),
		TestResultLabel:  utils.FormatTestResult(p.TestResult),
	}
}

// GET | PUT | DELETE /api/profile
func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := rt.profiles.Get(uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newProfileResponse(p))
	case http.MethodPut:
		var p services.Profile
		if err := decodeAndValidate(r, &p); err != nil {
			writeServiceError(w, err)
			return
		}
		saved, err := rt.profiles.Upsert(uid, &p)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newProfileResponse(saved))
	case http.MethodDelete:
		if err := rt.profiles.Erase(uid); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /api/profile/complete
func (rt *Router) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := rt.profiles.CompleteOnboarding(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(p))
}

// GET /api/profile/export
func (rt *Router) handleProfileExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	export, err := rt.profiles.SelfExport(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=export.json")
	writeJSON(w, http.StatusOK, export)
}

type createLogRequest struct {
	Date              string                    `json:"date" validate:"required,datetime=2006-01-02"`
	Time              string                    `json:"time"`
	PartnerName       string                    `json:"partner_name"`
	PartnerSTIStatus  services.PartnerSTIStatus `json:"partner_sti_status"`
	ProtectionUsed    services.ProtectionUsed   `json:"protection_used"`
	ProtectionFailure services.YesNoNotSure     `json:"protection_failure"`
	SexTypes          services.SexTypes         `json:"sex_types"`
	FluidsExchanged   services.FluidsExchanged  `json:"fluids_exchanged"`
	TestingReminder   services.ReminderOption   `json:"testing_reminder"`
	DiscreetIcon      bool                      `json:"discreet_icon"`
}

// GET | POST /api/logs
func (rt *Router) handleLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		logs, err := rt.encounters.List(uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "count": len(logs)})
	case http.MethodPost:
		var req createLogRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err)
			return
		}
		lg, err := rt.encounters.Create(uid, &services.EncounterLog{
			Date:              req.Date,
			Time:              req.Time,
			PartnerName:       req.PartnerName,
			PartnerSTIStatus:  req.PartnerSTIStatus,
			ProtectionUsed:    req.ProtectionUsed,
			ProtectionFailure: req.ProtectionFailure,
			SexTypes:          req.SexTypes,
			FluidsExchanged:   req.FluidsExchanged,
			TestingReminder:   req.TestingReminder,
			DiscreetIcon:      req.DiscreetIcon,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lg)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET | DELETE /api/logs/{id}
func (rt *Router) handleLogByID(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/logs/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		lg, err := rt.encounters.Get(uid, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lg)
	case http.MethodDelete:
		if err := rt.encounters.Delete(uid, id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/insights
func (rt *Router) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	sum, err := rt.insights.Summary(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"risk":              sum.Risk,
		"recent_logs":       sum.RecentLogs,
		"recent_summary":    sum.RecentSummary,
		"days_to_next_test": sum.DaysToNextTest,
		"metric_type":       sum.MetricType,
		"next_test_label":   utils.FormatDate(sum.Risk.NextTestDate),
	})
}

// GET /api/calendar/month?year=2025&month=5
func (rt *Router) handleMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeServiceError(w, services.NewInvalidError("year required"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, services.NewInvalidError("month required"))
		return
	}
	mv, err := rt.calendar.MonthView(uid, year, time.Month(month))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

// GET /api/calendar/week?date=2025-05-15
func (rt *Router) handleWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	anchor := time.Now().UTC()
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := services.ParseLogDate(q)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		anchor = d
	}
	wv, err := rt.calendar.WeekView(uid, anchor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wv)
}
