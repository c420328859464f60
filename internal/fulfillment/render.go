package fulfillment

import (
	"fmt"
	"strings"

	"dining-concierge/internal/models"
)

// render produces the subject and plain-text body for one recommendation
// email.
func render(req models.RecommendationRequest, restaurants []*models.RestaurantRecord) (subject, body string) {
	subject = fmt.Sprintf("Your %s Restaurant Recommendations!", req.Cuisine)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello! Here are my %s restaurant suggestions in %s for %s people, for %s at %s:\n\n",
		req.Cuisine, req.Location, req.NumberOfPeople, req.Date, req.DiningTime)

	for i, r := range restaurants {
		fmt.Fprintf(&b, "Recommendation %d:\n", i+1)
		fmt.Fprintf(&b, "  Name: %s\n", r.Name)
		fmt.Fprintf(&b, "  Address: %s\n", r.Address)
		fmt.Fprintf(&b, "  Rating: %s stars (%d reviews)\n\n", r.Rating, r.ReviewCount)
	}

	b.WriteString("Enjoy your meal!\n\n- Dining Concierge Bot")
	return subject, b.String()
}
