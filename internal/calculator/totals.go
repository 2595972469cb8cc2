package calculator

import (
	"sort"
	"time"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

// DayTotal aggregates the saved analyses of one calendar day.
type DayTotal struct {
	Date         string  `json:"date"` // YYYY-MM-DD in the summary's location
	Meals        int     `json:"meals"`
	HealthyMeals int     `json:"healthy_meals"`
	Calories     float64 `json:"calories"`
	Carbs        float64 `json:"carbs"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"fat"`
}

// Summary totals a window of saved analyses.
type Summary struct {
	// Days holds one entry per day with at least one meal, newest first.
	Days []DayTotal `json:"days"`

	Meals                int     `json:"meals"`
	HealthyMeals         int     `json:"healthy_meals"`
	Calories             float64 `json:"calories"`
	Carbs                float64 `json:"carbs"`
	Protein              float64 `json:"protein"`
	Fat                  float64 `json:"fat"`
	AverageDailyCalories float64 `json:"average_daily_calories"`

	// MacroSplit is nil when no meal reported any macronutrients.
	MacroSplit *MacroSplit `json:"macro_split,omitempty"`
}

// Summarize groups records created at or after since into calendar days in
// loc and totals them. Records before since are ignored. The daily average
// is taken over days that have meals.
func Summarize(records []*models.AnalysisRecord, since time.Time, loc *time.Location) *Summary {
	if loc == nil {
		loc = time.UTC
	}

	summary := &Summary{Days: []DayTotal{}}
	days := make(map[string]*DayTotal)

	for _, r := range records {
		if r.CreatedAt < since.Unix() {
			continue
		}

		date := time.Unix(r.CreatedAt, 0).In(loc).Format(time.DateOnly)
		day, exists := days[date]
		if !exists {
			day = &DayTotal{Date: date}
			days[date] = day
		}

		day.Meals++
		day.Calories += r.Calories
		day.Carbs += r.Carbs
		day.Protein += r.Protein
		day.Fat += r.Fat
		if r.IsHealthy {
			day.HealthyMeals++
		}
	}

	for _, day := range days {
		summary.Days = append(summary.Days, *day)
		summary.Meals += day.Meals
		summary.HealthyMeals += day.HealthyMeals
		summary.Calories += day.Calories
		summary.Carbs += day.Carbs
		summary.Protein += day.Protein
		summary.Fat += day.Fat
	}

	// ISO dates sort lexically.
	sort.Slice(summary.Days, func(i, j int) bool {
		return summary.Days[i].Date > summary.Days[j].Date
	})

	if len(summary.Days) > 0 {
		summary.AverageDailyCalories = summary.Calories / float64(len(summary.Days))
	}
	if split, err := CalculateMacroSplit(summary.Carbs, summary.Protein, summary.Fat); err == nil {
		summary.MacroSplit = split
	}

	return summary
}
