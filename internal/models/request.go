// internal/models/request.go
package models

import "fmt"

// RecommendationRequest is the work-queue payload produced by the dialog
// engine once a conversation is fulfilled. Field names are the queue wire
// contract shared with the fulfillment worker.
type RecommendationRequest struct {
	Location       string `json:"location"`
	Cuisine        string `json:"cuisine"`
	DiningTime     string `json:"diningTime"`
	Date           string `json:"date"`
	NumberOfPeople string `json:"numberOfPeople"`
	Email          string `json:"email"`
}

// NewRecommendationRequest constructs a request, refusing any missing field.
// A request that fails construction must never reach the queue.
func NewRecommendationRequest(location, cuisine, date, diningTime, numberOfPeople, email string) (*RecommendationRequest, error) {
	fields := map[string]string{
		"location":       location,
		"cuisine":        cuisine,
		"date":           date,
		"diningTime":     diningTime,
		"numberOfPeople": numberOfPeople,
		"email":          email,
	}
	for name, value := range fields {
		if value == "" {
			return nil, fmt.Errorf("recommendation request: missing %s", name)
		}
	}

	return &RecommendationRequest{
		Location:       location,
		Cuisine:        cuisine,
		DiningTime:     diningTime,
		Date:           date,
		NumberOfPeople: numberOfPeople,
		Email:          email,
	}, nil
}
