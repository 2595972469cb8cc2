package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/calculator"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/client"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

func TestRenderAnalysis(t *testing.T) {
	var buf bytes.Buffer
	renderAnalysis(&buf, &client.AnalysisResult{
		Analysis: &models.Analysis{
			FoodName:     "Samosas",
			HealthReason: "Deep fried pastry",
			Nutrition:    models.Nutrition{Calories: 520, Fat: 32, Sodium: 700},
			HealthTip:    "Bake them instead",
			Ingredients:  []string{"flour", "potato"},
			Allergens:    []string{"gluten"},
			Meme:         "I samosa-d my diet goodbye",
		},
		Persisted:  true,
		DisplayURL: "file:///tmp/samosa.jpg",
	})

	out := buf.String()
	for _, want := range []string{
		"Samosas", "Not so healthy", "520 kcal", "32g", "700mg",
		"Ingredients: flour, potato", "Allergens: gluten",
		"Tip: Bake them instead", "Saved to your history.", "file:///tmp/samosa.jpg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFallback(t *testing.T) {
	var buf bytes.Buffer
	renderAnalysis(&buf, &client.AnalysisResult{Analysis: models.FallbackAnalysis(), Fallback: true})

	out := buf.String()
	if !strings.Contains(out, "Unknown Food") || !strings.Contains(out, "placeholder") {
		t.Errorf("unexpected fallback output:\n%s", out)
	}
	if strings.Contains(out, "Saved to your history") {
		t.Error("fallback must not claim to be saved")
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No saved analyses") {
		t.Errorf("unexpected empty output: %s", buf.String())
	}

	buf.Reset()
	renderHistory(&buf, []*models.AnalysisRecord{
		{FoodName: "Salad", IsHealthy: true, Calories: 150, CreatedAt: 1700000000},
		{FoodName: "Pizza", Calories: 800, CreatedAt: 1699990000},
	})
	out := buf.String()
	if strings.Index(out, "Salad") > strings.Index(out, "Pizza") {
		t.Errorf("rows out of order:\n%s", out)
	}
	if !strings.Contains(out, "800") {
		t.Errorf("missing calories:\n%s", out)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, &calculator.Summary{Days: []calculator.DayTotal{}})
	if !strings.Contains(buf.String(), "No meals") {
		t.Errorf("unexpected empty output: %s", buf.String())
	}

	buf.Reset()
	renderSummary(&buf, &calculator.Summary{
		Days:                 []calculator.DayTotal{{Date: "2024-03-10", Meals: 2, HealthyMeals: 1, Calories: 1000}},
		Meals:                2,
		HealthyMeals:         1,
		Calories:             1000,
		AverageDailyCalories: 1000,
		MacroSplit:           &calculator.MacroSplit{Carbs: 0.5, Protein: 0.2, Fat: 0.3},
	})
	out := buf.String()
	for _, want := range []string{"2024-03-10", "Average per day: 1000 kcal", "carbs 50%", "fat 30%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
