package domain

import "time"

type Analysis struct {
	Strengths         []string `json:"strengths,omitempty"`
	Considerations    []string `json:"considerations,omitempty"`
	BestFor           string   `json:"bestFor,omitempty"`
	SentimentAnalysis string   `json:"sentimentAnalysis,omitempty"`
	KeyWords          []string `json:"keyWords,omitempty"`
	RecentTrends      string   `json:"recentTrends,omitempty"`
}

// RecommendationResult is the normalized outcome of one LLM round trip.
// TopChoice is a zero-based index into the hotels of the request.
type RecommendationResult struct {
	Success        bool              `json:"success"`
	Recommendation string            `json:"recommendation"`
	TopChoice      int               `json:"topChoice"`
	Analysis       Analysis          `json:"analysis"`
	Comparison     map[string]string `json:"comparison"`
	RawResponse    string            `json:"rawResponse"`
	Error          string            `json:"error,omitempty"`
}

// RecommendationRecord is the audit row written after each answered LLM call.
type RecommendationRecord struct {
	ID             string
	CreatedAt      time.Time
	Model          string
	Hotels         []string
	Criteria       UserCriteria
	Success        bool
	TopChoice      int
	Recommendation string
	RawResponse    string
	Error          *string
}
