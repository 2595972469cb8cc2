package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Analysis is the nutrition and health judgment produced for one uploaded
// image. Its JSON form is the response body of the analyze endpoint.
type Analysis struct {
	// FoodName is the model's name for the dish (e.g., "Samosas").
	FoodName string `json:"foodName"`

	// IsHealthy is the overall verdict; HealthReason explains it.
	IsHealthy    bool   `json:"isHealthy"`
	HealthReason string `json:"healthReason"`

	Nutrition Nutrition `json:"nutrition"`

	// HealthTip is a free-text suggestion shown under the verdict.
	HealthTip string `json:"healthTip"`

	// The model may omit any of these. Lists decode as empty, never nil, so
	// the response always carries both keys.
	PortionSize string   `json:"portionSize"`
	Ingredients []string `json:"ingredients"`
	Allergens   []string `json:"allergens"`
	Meme        string   `json:"meme"`
}

// UnmarshalJSON decodes any JSON object into an Analysis. Models do not
// always honor the requested types, so a field of the wrong type is coerced
// (see asText, asBool and asList) instead of failing the whole decode. Only
// input that is not an object is an error.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	var raw struct {
		FoodName     json.RawMessage `json:"foodName"`
		IsHealthy    json.RawMessage `json:"isHealthy"`
		HealthReason json.RawMessage `json:"healthReason"`
		Nutrition    json.RawMessage `json:"nutrition"`
		HealthTip    json.RawMessage `json:"healthTip"`
		PortionSize  json.RawMessage `json:"portionSize"`
		Ingredients  json.RawMessage `json:"ingredients"`
		Allergens    json.RawMessage `json:"allergens"`
		Meme         json.RawMessage `json:"meme"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("analysis: null is not an object")
	}

	var n Nutrition
	if err := json.Unmarshal(raw.Nutrition, &n); err != nil {
		// Not an object; keep zero amounts.
		n = Nutrition{}
	}

	*a = Analysis{
		FoodName:     asText(raw.FoodName),
		IsHealthy:    asBool(raw.IsHealthy),
		HealthReason: asText(raw.HealthReason),
		Nutrition:    n,
		HealthTip:    asText(raw.HealthTip),
		PortionSize:  asText(raw.PortionSize),
		Ingredients:  asList(raw.Ingredients),
		Allergens:    asList(raw.Allergens),
		Meme:         asText(raw.Meme),
	}
	return nil
}

// asText returns a string value as is and a number or boolean in its JSON
// spelling. Anything else is empty.
func asText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}

// asBool accepts a boolean, a string strconv.ParseBool understands, or a
// number (non-zero is true). Anything else is false.
func asBool(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 't':
		return true
	case '"':
		v, err := strconv.ParseBool(strings.TrimSpace(asText(raw)))
		return err == nil && v
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	default:
		return false
	}
}

// asList accepts an array, whose scalar elements are kept as text, or a
// single non-empty string, which becomes a one-element list. The result is
// never nil.
func asList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	list := []string{}
	if len(raw) == 0 {
		return list
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return list
		}
		for _, item := range items {
			if s := asText(item); s != "" {
				list = append(list, s)
			}
		}
	case '"':
		if s := strings.TrimSpace(asText(raw)); s != "" {
			list = append(list, s)
		}
	}
	return list
}

// Nutrition holds per-portion amounts as estimated by the model.
// Calories are kcal, sodium is mg, everything else is grams.
type Nutrition struct {
	Calories Amount `json:"calories"`
	Carbs    Amount `json:"carbs"`
	Protein  Amount `json:"protein"`
	Fat      Amount `json:"fat"`
	Fiber    Amount `json:"fiber"`
	Sugar    Amount `json:"sugar"`
	Sodium   Amount `json:"sodium"`
}

// Amount is a nutrition quantity. It decodes from a JSON number or, since
// models occasionally quote their numbers, from a numeric string with an
// optional unit suffix such as "12g" or "300 kcal". Anything without a
// leading number ("N/A", null, true, objects) decodes as 0. Values are not
// range checked.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler. It never fails on well-formed
// JSON.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = 0
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, err := parseQuantity(s); err == nil {
			*a = Amount(v)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if f, err := strconv.ParseFloat(string(data), 64); err == nil {
			*a = Amount(f)
		}
	}
	return nil
}

// parseQuantity reads the leading decimal number of s and ignores a trailing
// unit.
func parseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, fmt.Errorf("amount: %q is not a number", s)
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("amount: %q is not a number", s)
	}
	return v, nil
}

// Fallback placeholders, returned when the model reply cannot be read.
const (
	FallbackFoodName     = "Unknown Food"
	FallbackHealthReason = "Unable to analyze at this time"
	FallbackHealthTip    = "Please try again with a clearer image"
	FallbackPortionSize  = "1 serving"
	FallbackMeme         = "Why did the tomato turn red? Because it saw the salad dressing! 🍅😂"
)

// FallbackAnalysis returns the fixed placeholder analysis. Each call returns
// a fresh value so callers may not alias each other's slices.
func FallbackAnalysis() *Analysis {
	return &Analysis{
		FoodName:     FallbackFoodName,
		IsHealthy:    true,
		HealthReason: FallbackHealthReason,
		Nutrition:    Nutrition{},
		HealthTip:    FallbackHealthTip,
		PortionSize:  FallbackPortionSize,
		Ingredients:  []string{"Unknown"},
		Allergens:    []string{},
		Meme:         FallbackMeme,
	}
}
