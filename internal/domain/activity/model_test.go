package activity_test

import (
	"errors"
	"slices"
	"testing"

	"activityhub/internal/domain/activity"
)

// TestActivity_Validate tests validation of Activity.
func TestActivity_Validate(t *testing.T) {
	valid := activity.Activity{Name: "Music Concert", Type: "Cultural", Subcategory: "Music", Date: "2025-10-20"}

	tests := []struct {
		name    string
		mutate  func(a *activity.Activity)
		wantErr bool
	}{
		{name: "valid", mutate: func(a *activity.Activity) {}},
		{name: "missing name", mutate: func(a *activity.Activity) { a.Name = "" }, wantErr: true},
		{name: "whitespace type", mutate: func(a *activity.Activity) { a.Type = "   " }, wantErr: true},
		{name: "missing subcategory", mutate: func(a *activity.Activity) { a.Subcategory = "" }, wantErr: true},
		{name: "missing date", mutate: func(a *activity.Activity) { a.Date = "" }, wantErr: true},
		{name: "unpadded date", mutate: func(a *activity.Activity) { a.Date = "2025-9-3" }, wantErr: true},
		{name: "slash date", mutate: func(a *activity.Activity) { a.Date = "2025/10/20" }, wantErr: true},
		{name: "impossible date", mutate: func(a *activity.Activity) { a.Date = "2025-02-30" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := a.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, activity.ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want wrapped ErrInvalidInput", err)
			}
		})
	}
}

// TestActivity_Normalize verifies whitespace is trimmed from every field.
func TestActivity_Normalize(t *testing.T) {
	a := activity.Activity{Name: " Chess ", Type: "Academic\t", Subcategory: " Games", Date: " 2025-11-01 "}
	a.Normalize()
	want := activity.Activity{Name: "Chess", Type: "Academic", Subcategory: "Games", Date: "2025-11-01"}
	if a != want {
		t.Errorf("Normalize() = %+v, want %+v", a, want)
	}
}

// TestCompareNewestFirst verifies date-descending order with id tie-break.
func TestCompareNewestFirst(t *testing.T) {
	list := []activity.WithCount{
		{Activity: activity.Activity{ID: 1, Date: "2025-10-20"}},
		{Activity: activity.Activity{ID: 2, Date: "2025-09-30"}},
		{Activity: activity.Activity{ID: 3, Date: "2025-10-15"}},
		{Activity: activity.Activity{ID: 4, Date: "2025-10-20"}},
	}
	slices.SortFunc(list, activity.CompareNewestFirst)

	var got []int64
	for _, a := range list {
		got = append(got, a.ID)
	}
	want := []int64{4, 1, 3, 2}
	if !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

// TestCompareDates_FallsBackToStringOrder covers legacy rows with free-form dates.
func TestCompareDates_FallsBackToStringOrder(t *testing.T) {
	if activity.CompareDates("next week", "2025-01-01") <= 0 {
		t.Error("expected string comparison for unparseable date")
	}
	if activity.CompareDates("2024-12-31", "2025-01-01") >= 0 {
		t.Error("expected 2024-12-31 before 2025-01-01")
	}
}
