package httpserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotel_advisor/internal/app"
	"hotel_advisor/internal/domain"
)

// MaxHotelsPerRequest caps how many hotels one comparison may include.
const MaxHotelsPerRequest = 10

var validate = validator.New(validator.WithRequiredStructEnabled())

var errNoHotels = errors.New("at least one hotel or hotelId is required")

type reviewDTO struct {
	Score  float64 `json:"score" validate:"gte=0,lte=5"`
	Review string  `json:"review"`
	Date   string  `json:"date"`
}

type hotelDTO struct {
	Name         string      `json:"name" validate:"required"`
	Location     string      `json:"location"`
	Rating       float64     `json:"rating" validate:"gte=0,lte=5"`
	TotalReviews int         `json:"totalReviews" validate:"gte=0"`
	Reviews      []reviewDTO `json:"reviews" validate:"omitempty,dive"`
	// scraper-backed clients send their samples under this name
	ScrapedReviews []reviewDTO `json:"scrapedReviews" validate:"omitempty,dive"`
	KeyInsights    []string    `json:"keyInsights"`
}

type recommendationRequest struct {
	Hotels   []hotelDTO          `json:"hotels" validate:"omitempty,max=10,dive"`
	HotelIDs []string            `json:"hotelIds" validate:"omitempty,max=10,dive,required"`
	Criteria domain.UserCriteria `json:"criteria"`
}

type resolveRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (r recommendationRequest) check() error {
	if err := validate.Struct(r); err != nil {
		return describeValidation(err)
	}
	for i, h := range r.Hotels {
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("hotels[%d].name must not be blank", i)
		}
	}
	for i, id := range r.HotelIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("hotelIds[%d] must not be blank", i)
		}
	}
	n := len(r.Hotels) + len(r.HotelIDs)
	if n == 0 {
		return errNoHotels
	}
	if n > MaxHotelsPerRequest {
		return fmt.Errorf("at most %d hotels can be compared", MaxHotelsPerRequest)
	}
	return nil
}

func (r recommendationRequest) toApp() app.RecommendRequest {
	out := app.RecommendRequest{Criteria: trimCriteria(r.Criteria)}
	for _, h := range r.Hotels {
		sum := domain.HotelSummary{
			Name:         strings.TrimSpace(h.Name),
			Location:     strings.TrimSpace(h.Location),
			Rating:       h.Rating,
			TotalReviews: h.TotalReviews,
			KeyInsights:  h.KeyInsights,
		}
		reviews := h.Reviews
		if len(reviews) == 0 {
			reviews = h.ScrapedReviews
		}
		for _, rv := range reviews {
			sum.Reviews = append(sum.Reviews, domain.ReviewEntry{Score: rv.Score, Review: rv.Review, Date: rv.Date})
		}
		out.Hotels = append(out.Hotels, sum)
	}
	for _, id := range r.HotelIDs {
		out.HotelIDs = append(out.HotelIDs, strings.ToLower(strings.TrimSpace(id)))
	}
	return out
}

func trimCriteria(c domain.UserCriteria) domain.UserCriteria {
	return domain.UserCriteria{
		Proximity:  strings.TrimSpace(c.Proximity),
		Comfort:    strings.TrimSpace(c.Comfort),
		Ambiance:   strings.TrimSpace(c.Ambiance),
		Activities: strings.TrimSpace(c.Activities),
		TravelType: strings.TrimSpace(c.TravelType),
	}
}

// describeValidation flattens validator errors into one readable line.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
