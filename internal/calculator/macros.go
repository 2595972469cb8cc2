package calculator

import "fmt"

// Energy per gram of each macronutrient, in kcal.
const (
	KcalPerGramCarbs   = 4.0
	KcalPerGramProtein = 4.0
	KcalPerGramFat     = 9.0
)

// MacroSplit is the share of macronutrient energy coming from each macro.
// The three fractions add up to 1.
type MacroSplit struct {
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// CalculateMacroSplit converts gram amounts into energy shares using the
// Atwater factors: share = grams × factor / Σ(grams × factor).
func CalculateMacroSplit(carbs, protein, fat float64) (*MacroSplit, error) {
	if carbs < 0 || protein < 0 || fat < 0 {
		return nil, fmt.Errorf("macronutrient amounts cannot be negative")
	}

	carbsKcal := carbs * KcalPerGramCarbs
	proteinKcal := protein * KcalPerGramProtein
	fatKcal := fat * KcalPerGramFat

	total := carbsKcal + proteinKcal + fatKcal
	if total == 0 {
		return nil, fmt.Errorf("macronutrient amounts cannot all be zero")
	}

	return &MacroSplit{
		Carbs:   carbsKcal / total,
		Protein: proteinKcal / total,
		Fat:     fatKcal / total,
	}, nil
}
