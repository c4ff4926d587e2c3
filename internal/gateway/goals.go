package gateway

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/apiclient"
	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
	"github.com/Hassanein20/Senior-Project-dev/internal/model"
)

// Goals handles the user's daily target values at /user/goals.
type Goals struct {
	log      *zap.Logger
	api      *apiclient.Client
	validate *validator.Validate
}

// NewGoals creates a Goals gateway.
func NewGoals(log *zap.Logger, api *apiclient.Client, validate *validator.Validate) *Goals {
	return &Goals{log: log, api: api, validate: validate}
}

type goalsResponse struct {
	Goals *model.UserGoals `json:"goals"`
}

// Goals returns the current targets.
func (g *Goals) Goals(ctx context.Context) (model.UserGoals, error) {
	var resp goalsResponse
	if err := g.api.Get(ctx, "/user/goals", nil, &resp, "Failed to get user goals. Please try again."); err != nil {
		return model.UserGoals{}, err
	}
	if resp.Goals == nil {
		return model.UserGoals{}, &apperror.TransportError{Message: "Invalid goals response"}
	}
	return *resp.Goals, nil
}

// Update replaces the targets and returns the server's copy.
func (g *Goals) Update(ctx context.Context, goals model.UserGoals) (model.UserGoals, error) {
	if err := g.validate.Struct(goals); err != nil {
		return model.UserGoals{}, apperror.NewValidation(err)
	}

	var resp goalsResponse
	if err := g.api.Put(ctx, "/user/goals", goals, &resp, "Failed to update user goals. Please try again."); err != nil {
		return model.UserGoals{}, err
	}
	if resp.Goals == nil {
		// Some backend revisions acknowledge without echoing the goals.
		return goals, nil
	}
	return *resp.Goals, nil
}
