package domain

// HotelSummary is the per-hotel input of a recommendation request.
type HotelSummary struct {
	Name         string        `json:"name"`
	Location     string        `json:"location,omitempty"` // "Unknown" when blank
	Rating       float64       `json:"rating"`             // 0-5
	TotalReviews int           `json:"totalReviews"`
	Reviews      []ReviewEntry `json:"reviews"` // most relevant first
	KeyInsights  []string      `json:"keyInsights"`
}

type ReviewEntry struct {
	Score  float64 `json:"score"` // 0-5
	Review string  `json:"review"`
	Date   string  `json:"date"`
}

// UserCriteria holds soft preferences. An empty field means "no preference".
type UserCriteria struct {
	Proximity  string `json:"proximity,omitempty"`
	Comfort    string `json:"comfort,omitempty"`
	Ambiance   string `json:"ambiance,omitempty"`
	Activities string `json:"activities,omitempty"`
	TravelType string `json:"travelType,omitempty"`
}

func (c UserCriteria) IsEmpty() bool {
	return c.Proximity == "" && c.Comfort == "" && c.Ambiance == "" &&
		c.Activities == "" && c.TravelType == ""
}

// Hotel is a stored hotel built from scraper exports.
type Hotel struct {
	Slug         string
	Name         string
	Location     *string
	Country      *string
	Rating       *float64
	TotalReviews int
	KeyInsights  []string
	SourceURL    *string
}
