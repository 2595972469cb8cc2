package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/calculator"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/client"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

func verdict(healthy bool) string {
	if healthy {
		return "✅ Healthy"
	}
	return "⚠️  Not so healthy"
}

// renderAnalysis prints one result: verdict, macro table, lists and tip.
func renderAnalysis(w io.Writer, r *client.AnalysisResult) {
	fmt.Fprintf(w, "%s  %s\n", r.FoodName, verdict(r.IsHealthy))
	if r.PortionSize != "" {
		fmt.Fprintf(w, "Portion: %s\n", r.PortionSize)
	}
	fmt.Fprintf(w, "%s\n\n", r.HealthReason)

	n := r.Nutrition
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Calories", "Carbs", "Protein", "Fat", "Fiber", "Sugar", "Sodium"})
	table.Append([]string{
		amount(n.Calories, " kcal"),
		amount(n.Carbs, "g"),
		amount(n.Protein, "g"),
		amount(n.Fat, "g"),
		amount(n.Fiber, "g"),
		amount(n.Sugar, "g"),
		amount(n.Sodium, "mg"),
	})
	table.Render()

	if len(r.Ingredients) > 0 {
		fmt.Fprintf(w, "\nIngredients: %s\n", strings.Join(r.Ingredients, ", "))
	}
	if len(r.Allergens) > 0 {
		fmt.Fprintf(w, "Allergens: %s\n", strings.Join(r.Allergens, ", "))
	}
	fmt.Fprintf(w, "\nTip: %s\n", r.HealthTip)
	if r.Meme != "" {
		fmt.Fprintf(w, "😄 %s\n", r.Meme)
	}

	switch {
	case r.Fallback:
		fmt.Fprintln(w, "\nThe image could not be analyzed; showing placeholder values.")
	case r.Persisted:
		fmt.Fprintln(w, "\nSaved to your history.")
	}
	if r.DisplayURL != "" {
		fmt.Fprintf(w, "Image: %s\n", r.DisplayURL)
	}
}

// renderHistory prints saved analyses, newest first as returned by the server.
func renderHistory(w io.Writer, records []*models.AnalysisRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No saved analyses yet.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Food", "Verdict", "Calories", "Carbs", "Protein", "Fat"})
	for _, r := range records {
		table.Append([]string{
			time.Unix(r.CreatedAt, 0).Format("2006-01-02 15:04"),
			r.FoodName,
			verdict(r.IsHealthy),
			amount(models.Amount(r.Calories), ""),
			amount(models.Amount(r.Carbs), "g"),
			amount(models.Amount(r.Protein), "g"),
			amount(models.Amount(r.Fat), "g"),
		})
	}
	table.Render()
}

// renderSummary prints per-day totals followed by the window totals.
func renderSummary(w io.Writer, s *calculator.Summary) {
	if s.Meals == 0 {
		fmt.Fprintln(w, "No meals in this period.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Meals", "Healthy", "Calories", "Carbs", "Protein", "Fat"})
	for _, d := range s.Days {
		table.Append([]string{
			d.Date,
			fmt.Sprint(d.Meals),
			fmt.Sprint(d.HealthyMeals),
			amount(models.Amount(d.Calories), ""),
			amount(models.Amount(d.Carbs), "g"),
			amount(models.Amount(d.Protein), "g"),
			amount(models.Amount(d.Fat), "g"),
		})
	}
	table.SetFooter([]string{
		"Total",
		fmt.Sprint(s.Meals),
		fmt.Sprint(s.HealthyMeals),
		amount(models.Amount(s.Calories), ""),
		amount(models.Amount(s.Carbs), "g"),
		amount(models.Amount(s.Protein), "g"),
		amount(models.Amount(s.Fat), "g"),
	})
	table.Render()

	fmt.Fprintf(w, "Average per day: %.0f kcal\n", s.AverageDailyCalories)
	if m := s.MacroSplit; m != nil {
		fmt.Fprintf(w, "Energy from carbs %.0f%%, protein %.0f%%, fat %.0f%%\n", m.Carbs*100, m.Protein*100, m.Fat*100)
	}
}

func amount(a models.Amount, unit string) string {
	return fmt.Sprintf("%g%s", float64(a), unit)
}
