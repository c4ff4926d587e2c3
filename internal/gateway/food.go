// Package gateway provides typed request/response mapping for the backend's
// auth, goals and food-log resources.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/aggregate"
	"github.com/Hassanein20/Senior-Project-dev/internal/apiclient"
	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
	"github.com/Hassanein20/Senior-Project-dev/internal/model"
)

// nutrientFloor is a compatibility shim, not a business rule: the backend
// rejects near-zero nutrient values, so anything below the floor is clamped
// up to it before submission.
const nutrientFloor = 0.01

// Food talks to the /consumed-foods resource.
type Food struct {
	log      *zap.Logger
	api      *apiclient.Client
	validate *validator.Validate
}

// NewFood creates a Food gateway.
func NewFood(log *zap.Logger, api *apiclient.Client, validate *validator.Validate) *Food {
	return &Food{log: log, api: api, validate: validate}
}

// entryRow is a consumed-food row in the backend's own field names.
type entryRow struct {
	ID        int64   `json:"id"`
	FoodID    string  `json:"food_id"`
	FoodName  string  `json:"food_name"`
	Quantity  float64 `json:"quantity"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	EntryDate string  `json:"entry_date"`
}

func (r entryRow) toEntry() model.FoodEntry {
	return model.FoodEntry{
		ID:          r.ID,
		FoodID:      r.FoodID,
		Name:        r.FoodName,
		AmountGrams: r.Quantity,
		OccurredAt:  r.EntryDate,
		Calories:    r.Calories,
		Protein:     r.Protein,
		Carbs:       r.Carbs,
		Fat:         r.Fat,
	}
}

// AddEntry validates and submits a new consumption event. Validation failures
// never reach the network.
func (g *Food) AddEntry(ctx context.Context, entry model.NewFoodEntry) (model.FoodEntry, error) {
	if err := g.validate.Struct(entry); err != nil {
		g.log.Warn("food entry rejected client-side", zap.Error(err))
		return model.FoodEntry{}, apperror.NewValidation(err)
	}

	entry.Calories = clampNutrient(entry.Calories)
	entry.Protein = clampNutrient(entry.Protein)
	entry.Carbs = clampNutrient(entry.Carbs)
	entry.Fat = clampNutrient(entry.Fat)

	var row entryRow
	err := g.api.Post(ctx, "/consumed-foods", entry, &row, "Failed to add food entry. Please try again.")
	if err != nil {
		return model.FoodEntry{}, err
	}

	saved := row.toEntry()
	if saved.FoodID == "" {
		saved.FoodID = entry.FoodID
	}
	if saved.Name == "" {
		saved.Name = entry.Name
	}
	if saved.AmountGrams == 0 {
		saved.AmountGrams = entry.AmountGrams
	}
	if saved.OccurredAt == "" {
		saved.OccurredAt = entry.Date
	}
	if saved.Calories == 0 {
		saved.Calories = entry.Calories
	}
	if saved.Protein == 0 {
		saved.Protein = entry.Protein
	}
	if saved.Carbs == 0 {
		saved.Carbs = entry.Carbs
	}
	if saved.Fat == 0 {
		saved.Fat = entry.Fat
	}
	return saved, nil
}

// EntriesForDate lists the entries logged on one calendar day, in insertion
// order. A null or non-array body is an empty day, not an error.
func (g *Food) EntriesForDate(ctx context.Context, date string) ([]model.FoodEntry, error) {
	var raw json.RawMessage
	query := url.Values{"date": {date}}
	if err := g.api.Get(ctx, "/consumed-foods/daily", query, &raw, "Failed to get daily entries. Please try again."); err != nil {
		return nil, err
	}

	list := unwrapList(raw)
	if list == nil {
		return []model.FoodEntry{}, nil
	}
	var rows []entryRow
	if err := json.Unmarshal(list, &rows); err != nil {
		g.log.Warn("malformed daily entries payload", zap.Error(err))
		return []model.FoodEntry{}, nil
	}

	entries := make([]model.FoodEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

// DailyTotals fetches the aggregated totals for one day. Fields the backend
// omits stay zero.
func (g *Food) DailyTotals(ctx context.Context, date string) (model.DailyTotals, error) {
	var totals model.DailyTotals
	query := url.Values{"date": {date}}
	err := g.api.Get(ctx, "/consumed-foods/nutrition", query, &totals, "Failed to get daily nutrition. Please try again.")
	return totals, err
}

// DeleteEntry removes an entry by id. Callers must not evict the entry from
// any local cache unless this returns true.
func (g *Food) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	err := g.api.Delete(ctx, fmt.Sprintf("/consumed-foods/%d", id), "Failed to delete food entry. Please try again.")
	if err != nil {
		return false, err
	}
	return true, nil
}

// History fetches daily rollups for the inclusive [start, end] range.
// combineData asks the backend to merge today's live totals with the
// historical rows; the aggregator re-merges defensively regardless.
func (g *Food) History(ctx context.Context, start, end string) ([]aggregate.HistoryRow, error) {
	var raw json.RawMessage
	query := url.Values{
		"startDate":   {start},
		"endDate":     {end},
		"combineData": {"true"},
	}
	if err := g.api.Get(ctx, "/consumed-foods/history", query, &raw, "Failed to get nutrition history. Please try again."); err != nil {
		return nil, err
	}

	list := unwrapList(raw)
	if list == nil {
		return []aggregate.HistoryRow{}, nil
	}
	var rows []aggregate.HistoryRow
	if err := json.Unmarshal(list, &rows); err != nil {
		g.log.Warn("malformed nutrition history payload", zap.Error(err))
		return []aggregate.HistoryRow{}, nil
	}
	return rows, nil
}

func clampNutrient(v float64) float64 {
	if v < nutrientFloor {
		return nutrientFloor
	}
	return v
}
