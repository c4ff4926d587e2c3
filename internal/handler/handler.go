// Package handler exposes the dashboard controller and gateways over a local
// HTTP surface.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
	"github.com/Hassanein20/Senior-Project-dev/internal/dashboard"
	"github.com/Hassanein20/Senior-Project-dev/internal/fdc"
	"github.com/Hassanein20/Senior-Project-dev/internal/model"
)

const dateLayout = "2006-01-02"

// Dashboard is the slice of the controller the HTTP surface needs.
type Dashboard interface {
	AddEntry(ctx context.Context, entry model.NewFoodEntry) (model.FoodEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	SetWeekOffset(ctx context.Context, offset int) error
	Snapshot() dashboard.Snapshot
}

// FoodReader serves date-addressed reads that bypass the controller cache.
type FoodReader interface {
	EntriesForDate(ctx context.Context, date string) ([]model.FoodEntry, error)
	DailyTotals(ctx context.Context, date string) (model.DailyTotals, error)
}

// AuthGateway is the authentication slice of the backend.
type AuthGateway interface {
	Login(ctx context.Context, creds model.Credentials) (model.User, error)
	Register(ctx context.Context, reg model.Registration) (model.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (model.User, error)
}

// GoalsGateway reads and updates the user's macro targets.
type GoalsGateway interface {
	Goals(ctx context.Context) (model.UserGoals, error)
	Update(ctx context.Context, goals model.UserGoals) (model.UserGoals, error)
}

// FoodSearcher looks up foods in the external food database.
type FoodSearcher interface {
	Search(ctx context.Context, query string) ([]fdc.Food, error)
}

// Handler wires the HTTP routes to the controller and gateways.
type Handler struct {
	log   *zap.Logger
	dash  Dashboard
	food  FoodReader
	auth  AuthGateway
	goals GoalsGateway
	foods FoodSearcher
	now   func() time.Time
}

// New creates a new Handler instance.
func New(log *zap.Logger, dash Dashboard, food FoodReader, auth AuthGateway, goals GoalsGateway, foods FoodSearcher) *Handler {
	return &Handler{
		log:   log,
		dash:  dash,
		food:  food,
		auth:  auth,
		goals: goals,
		foods: foods,
		now:   time.Now,
	}
}

// Routes builds the chi router for the whole surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)

	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/profile", h.Profile)

	r.Post("/entries", h.CreateEntry)
	r.Get("/entries", h.ListEntries)
	r.Delete("/entries/{id}", h.RemoveEntry)
	r.Get("/totals", h.Totals)
	r.Get("/week", h.Week)

	r.Get("/goals", h.GetGoals)
	r.Put("/goals", h.UpdateGoals)

	r.Get("/foods/search", h.SearchFoods)
	return r
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Login authenticates against the backend and installs the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !h.decode(w, r, &creds) {
		return
	}
	user, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Register creates an account and installs the session.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if !h.decode(w, r, &reg) {
		return
	}
	user, err := h.auth.Register(r.Context(), reg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Logout ends the session. Local state is cleared even when the backend call
// fails, so logout always reports success.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.log.Warn("backend logout failed", zap.Error(err))
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "Ok"})
}

// Profile returns the authenticated user's profile snapshot.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Profile(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// CreateEntry logs a consumption event through the controller.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.NewFoodEntry
	if !h.decode(w, r, &entry) {
		return
	}
	saved, err := h.dash.AddEntry(r.Context(), entry)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, saved)
}

// ListEntries returns the entries for a date, defaulting to today.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	entries, err := h.food.EntriesForDate(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"date": date, "entries": entries})
}

// RemoveEntry deletes an entry through the controller.
func (h *Handler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
		return
	}
	if err := h.dash.DeleteEntry(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "Ok"})
}

// Totals returns the aggregated consumption for a date, defaulting to today.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	totals, err := h.food.DailyTotals(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"date": date, "totals": totals})
}

// Week switches the controller to the requested week window and returns its
// series. offset 0 is the current trailing week, N is N weeks back.
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "offset must be a non-negative integer"})
			return
		}
		offset = parsed
	}
	if err := h.dash.SetWeekOffset(r.Context(), offset); err != nil {
		h.writeError(w, err)
		return
	}
	snap := h.dash.Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]any{"weekOffset": snap.WeekOffset, "week": snap.Week})
}

// GetGoals returns the user's macro targets.
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.Goals(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// UpdateGoals replaces the user's macro targets.
func (h *Handler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	var goals model.UserGoals
	if !h.decode(w, r, &goals) {
		return
	}
	updated, err := h.goals.Update(r.Context(), goals)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"goals": updated})
}

// SearchFoods proxies a text search to the external food database.
func (h *Handler) SearchFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.foods.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if foods == nil {
		foods = []fdc.Food{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"foods": foods})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return false
	}
	return true
}

// dateParam reads the optional date query parameter, defaulting to today.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return h.now().Format(dateLayout), true
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be in YYYY-MM-DD format"})
		return "", false
	}
	return date, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("unable to write response stream", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP status codes. Anything that is
// not a recognized client-side condition surfaces as a bad gateway with the
// already user-facing message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	body := map[string]any{"error": err.Error()}

	var (
		validationErr *apperror.ValidationError
		authErr       *apperror.AuthError
		csrfErr       *apperror.CsrfError
		rateErr       *apperror.RateLimitError
	)
	switch {
	case errors.Is(err, dashboard.ErrBusy):
		status = http.StatusConflict
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body["fields"] = validationErr.Fields
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &csrfErr):
		status = http.StatusForbidden
	case errors.As(err, &rateErr):
		status = http.StatusTooManyRequests
	}

	h.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	h.writeJSON(w, status, body)
}
