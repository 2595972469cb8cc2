package models

// AnalysisRecord is the persisted subset of an Analysis. Records are created
// once by the analyze endpoint and never updated.
type AnalysisRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string `json:"id"`

	// UserID is the owner, as resolved from the caller's session token.
	UserID string `json:"user_id"`

	// ImageURL references the analyzed image: an object storage URL when
	// uploads are enabled, otherwise the reference the client sent.
	ImageURL string `json:"image_url"`

	FoodName     string  `json:"food_name"`
	IsHealthy    bool    `json:"is_healthy"`
	HealthReason string  `json:"health_reason"`
	Calories     float64 `json:"calories"`
	Carbs        float64 `json:"carbs"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"fat"`
	HealthTip    string  `json:"health_tip"`

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64 `json:"created_at"`
}

// NewAnalysisRecord copies the scalar fields of a into a record owned by
// userID. ID and CreatedAt are left for the store to assign.
func NewAnalysisRecord(userID, imageURL string, a *Analysis) *AnalysisRecord {
	return &AnalysisRecord{
		UserID:       userID,
		ImageURL:     imageURL,
		FoodName:     a.FoodName,
		IsHealthy:    a.IsHealthy,
		HealthReason: a.HealthReason,
		Calories:     float64(a.Nutrition.Calories),
		Carbs:        float64(a.Nutrition.Carbs),
		Protein:      float64(a.Nutrition.Protein),
		Fat:          float64(a.Nutrition.Fat),
		HealthTip:    a.HealthTip,
	}
}
