// Package fdc looks up foods in the USDA FoodData Central database.
package fdc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
)

// searchDataTypes restricts results to the collections the entry form can
// actually use.
const searchDataTypes = "Foundation,Survey (FNDDS),Branded"

const defaultPageSize = 10

// Nutrient is a single nutrient reading as FoodData Central reports it,
// normalized per 100 g of the food.
type Nutrient struct {
	Name  string  `json:"nutrientName"`
	Value float64 `json:"value"`
	Unit  string  `json:"unitName"`
}

// Food is one search hit.
type Food struct {
	FDCID       int64      `json:"fdcId"`
	Description string     `json:"description"`
	Brand       string     `json:"brandName,omitempty"`
	Nutrients   []Nutrient `json:"foodNutrients"`
}

// Macros are the macronutrients of a concrete portion, in grams, with
// calories derived from them.
type Macros struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

func (f Food) nutrient(name string) float64 {
	for _, n := range f.Nutrients {
		if n.Name == name {
			return n.Value
		}
	}
	return 0
}

// Protein returns grams of protein per 100 g, zero when the food record
// carries no such nutrient.
func (f Food) Protein() float64 { return f.nutrient("Protein") }

// Carbs returns grams of carbohydrate per 100 g.
func (f Food) Carbs() float64 { return f.nutrient("Carbohydrate, by difference") }

// Fat returns grams of fat per 100 g.
func (f Food) Fat() float64 { return f.nutrient("Total lipid (fat)") }

// Energy returns the reported energy per 100 g in whatever unit the record
// uses, usually kcal.
func (f Food) Energy() float64 { return f.nutrient("Energy") }

// MacrosFor scales the per-100 g macros to a portion of amountGrams.
// Calories are computed from the macros (4/4/9) rather than the Energy
// nutrient so the figure stays consistent for records that report kJ or no
// energy at all.
func (f Food) MacrosFor(amountGrams float64) Macros {
	protein := f.Protein() * amountGrams / 100
	carbs := f.Carbs() * amountGrams / 100
	fat := f.Fat() * amountGrams / 100
	return Macros{
		Calories: protein*4 + carbs*4 + fat*9,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
	}
}

// Options configures the lookup client.
type Options struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Timeout  time.Duration
}

// Client queries the FoodData Central search endpoint.
type Client struct {
	log      *zap.Logger
	http     *http.Client
	baseURL  string
	key      string
	pageSize int
}

func New(log *zap.Logger, opts Options) *Client {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		log:      log,
		http:     &http.Client{Timeout: opts.Timeout},
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		key:      opts.APIKey,
		pageSize: pageSize,
	}
}

// Search returns foods matching query. A blank query returns no results
// without touching the network; an empty result set is not an error.
func (c *Client) Search(ctx context.Context, query string) ([]Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("api_key", c.key)
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("dataType", searchDataTypes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/foods/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &apperror.TransportError{Message: "Food search failed. Please try again.", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperror.TransportError{Message: "Food search failed. Please try again.", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn("food search rejected", zap.Int("status", resp.StatusCode), zap.String("query", query))
		return nil, &apperror.TransportError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Food search failed with status %d.", resp.StatusCode),
		}
	}

	var payload struct {
		Foods []Food `json:"foods"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &apperror.TransportError{Message: "Food search returned an unreadable response.", Err: err}
	}
	return payload.Foods, nil
}
