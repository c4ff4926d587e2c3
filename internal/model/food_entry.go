package model

// NewFoodEntry is the payload for logging a consumption event. Field names
// follow the backend's POST /consumed-foods contract.
type NewFoodEntry struct {
	FoodID      string  `json:"foodId" validate:"required"`
	Name        string  `json:"name" validate:"required,min=1"`
	AmountGrams float64 `json:"amount" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"required,dateformat"`
	Calories    float64 `json:"calories" validate:"gte=0"`
	Protein     float64 `json:"protein" validate:"gte=0"`
	Carbs       float64 `json:"carbs" validate:"gte=0"`
	Fat         float64 `json:"fat" validate:"gte=0"`
}

// FoodEntry is a logged consumption event as stored by the backend.
type FoodEntry struct {
	ID          int64   `json:"id"`
	FoodID      string  `json:"foodId"`
	Name        string  `json:"name"`
	AmountGrams float64 `json:"amount"`
	OccurredAt  string  `json:"date"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
}

// DailyTotals is the aggregated consumption for one calendar day, as returned
// by GET /consumed-foods/nutrition.
type DailyTotals struct {
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
}
