package orchestrators

import (
	"context"
	"log/slog"

	"activityhub/internal/domain/activity"
)

// ActivityStoreForCreate defines the store interface needed by CreateActivity.
type ActivityStoreForCreate interface {
	CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error)
}

// CreateActivityInput carries input for the create activity orchestrator.
type CreateActivityInput struct {
	Name        string
	Type        string
	Subcategory string
	Date        string
}

// CreateActivityDeps holds dependencies for CreateActivity.
type CreateActivityDeps struct {
	Store ActivityStoreForCreate
}

// ExecuteCreateActivity validates and stores a new activity.
// PRE: none
// POST: Returns the stored activity with its id, or activity.ErrInvalidInput
// when a field is missing or the date is not YYYY-MM-DD
func ExecuteCreateActivity(ctx context.Context, input CreateActivityInput, deps CreateActivityDeps) (activity.Activity, error) {
	a := activity.Activity{
		Name:        input.Name,
		Type:        input.Type,
		Subcategory: input.Subcategory,
		Date:        input.Date,
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return activity.Activity{}, err
	}

	created, err := deps.Store.CreateActivity(ctx, a)
	if err != nil {
		return activity.Activity{}, err
	}
	slog.Info("activity_event", "event", "created", "activity_id", created.ID, "date", created.Date)
	return created, nil
}
