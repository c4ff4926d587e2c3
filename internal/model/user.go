package model

// User is the profile snapshot the backend returns on login and profile reads.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Credentials is the POST /auth/login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Registration is the POST /auth/register payload.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserGoals holds the user's daily macro targets and goal weight.
type UserGoals struct {
	TargetCalories float64 `json:"targetCalories" validate:"gte=0"`
	TargetProtein  float64 `json:"targetProtein" validate:"gte=0"`
	TargetCarbs    float64 `json:"targetCarbs" validate:"gte=0"`
	TargetFats     float64 `json:"targetFats" validate:"gte=0"`
	TargetWeight   float64 `json:"targetWeight" validate:"gte=0"`
}
