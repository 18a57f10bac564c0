package app

import (
	"fmt"
	"strconv"
	"strings"

	"hotel_advisor/internal/domain"
)

// MaxSampleReviews is the number of reviews per hotel that reach the prompt.
const MaxSampleReviews = 8

// SystemPersona is sent as the system message of every completion.
const SystemPersona = "You are an expert travel and accommodation advisor with more than 15 years of experience. " +
	"You analyse hotel reviews to give personalised, professional recommendations. " +
	"You rely PRIMARILY on the analysis of real guest reviews to identify their actual experiences, feelings and needs. " +
	"You take into account service quality, cleanliness, location, value for money and the specific needs of travellers as expressed in their own words."

const unknownLocation = "Unknown"

// BuildPrompt renders the user message for a comparative analysis of hotels.
// The output only depends on its inputs.
func BuildPrompt(hotels []domain.HotelSummary, criteria domain.UserCriteria) (string, error) {
	if len(hotels) == 0 {
		return "", domain.ErrNoHotels
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I am comparing %d hotels for a trip. Here is the data for each hotel, based on real guest reviews from Booking.com:\n\n", len(hotels))

	for i, h := range hotels {
		writeHotelBlock(&b, i+1, h)
	}

	if lines := criteriaLines(criteria); len(lines) > 0 {
		b.WriteString("USER SELECTION CRITERIA:\n")
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	writeInstructions(&b, len(hotels))
	return b.String(), nil
}

func writeHotelBlock(b *strings.Builder, ordinal int, h domain.HotelSummary) {
	location := strings.TrimSpace(h.Location)
	if location == "" {
		location = unknownLocation
	}

	fmt.Fprintf(b, "HOTEL %d: %s\n", ordinal, h.Name)
	fmt.Fprintf(b, "Location: %s\n", location)
	fmt.Fprintf(b, "Average rating: %.1f/5\n", h.Rating)
	fmt.Fprintf(b, "Number of reviews: %d\n", h.TotalReviews)
	fmt.Fprintf(b, "Key insights: %s\n\n", strings.Join(h.KeyInsights, ", "))
	b.WriteString("Recent reviews (sample):\n")

	sample := h.Reviews
	if len(sample) > MaxSampleReviews {
		sample = sample[:MaxSampleReviews]
	}
	for _, r := range sample {
		fmt.Fprintf(b, "- %s/5: \"%s\" (%s)\n", strconv.FormatFloat(r.Score, 'f', -1, 64), r.Review, r.Date)
	}
	b.WriteString("\n---\n\n")
}

// criteriaLines keeps the fixed order proximity, comfort, ambiance,
// activities, travel type and skips unset values.
func criteriaLines(c domain.UserCriteria) []string {
	fields := []struct{ label, value string }{
		{"Proximity to attractions/transport", c.Proximity},
		{"Desired comfort level", c.Comfort},
		{"Preferred ambiance", c.Ambiance},
		{"Favourite activities", c.Activities},
		{"Travel type", c.TravelType},
	}
	var out []string
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			out = append(out, fmt.Sprintf("- %s: %s", f.label, v))
		}
	}
	return out
}

func writeInstructions(b *strings.Builder, n int) {
	b.WriteString(`As an expert travel advisor with 15 years of experience, analyse these hotels based PRIMARILY on the real guest reviews.

REQUIRED ANALYSIS:
1. **Sentiment analysis of the reviews**: identify the emotions, feelings and experiences of the guests
2. **Recurring keywords**: note the terms that come up often in the reviews (cleanliness, service, location, etc.)
3. **Recurring problems**: identify the negative points mentioned by several guests
4. **Authentic strengths**: the aspects guests really appreciate, in their own words
5. **Consistency of experiences**: check whether the reviews are consistent with each other

Answer in the following JSON format:

{
  "recommendation": "Detailed recommendation based on the analysis of the real reviews, explaining why this hotel best matches the expectations",
  "topChoice": 1,
  "analysis": {
    "strengths": ["Strength identified in the reviews", "Another strength mentioned by guests"],
    "considerations": ["Point of attention mentioned by guests", "Aspect to consider according to the reviews"],
    "bestFor": "Ideal type of traveller based on the reviews and shared experiences",
    "sentimentAnalysis": "Overall sentiment of the reviews (very positive, positive, mixed, etc.)",
    "keyWords": ["Recurring keywords in the reviews", "Frequently mentioned terms"],
    "recentTrends": "Trends observed in the recent reviews"
  },
  "comparison": {
`)
	for i := 1; i <= n; i++ {
		sep := ","
		if i == n {
			sep = ""
		}
		fmt.Fprintf(b, "    \"hotel%d\": \"Analysis based on the reviews of hotel %d\"%s\n", i, i, sep)
	}
	b.WriteString("  }\n}\n\n")
	fmt.Fprintf(b, "Replace \"topChoice\" with the number of the recommended hotel (%s). ", ordinalChoices(n))
	b.WriteString("Hotels are numbered from 1 in the order listed above.")
}

// ordinalChoices renders "1", "1 or 2", "1, 2 or 3", ...
func ordinalChoices(n int) string {
	if n <= 1 {
		return "1"
	}
	parts := make([]string, 0, n-1)
	for i := 1; i < n; i++ {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ", ") + " or " + strconv.Itoa(n)
}
