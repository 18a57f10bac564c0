package app

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// HotelRef is what a Booking.com hotel URL tells us about a hotel.
type HotelRef struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Location string `json:"location"`
}

var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNotBookingURL = errors.New("URL must point to booking.com")
	ErrNotHotelPage  = errors.New("URL must point to a hotel page")
	ErrMissingHotel  = errors.New("hotel identifier missing from URL")
)

var (
	langSuffix  = regexp.MustCompile(`\.(fr|en|en-gb|es|de|it)\.html$|\.html$`)
	countryCode = regexp.MustCompile(`^[a-z]{2}$`)
)

var countryNames = map[string]string{
	"fr": "France",
	"gb": "United Kingdom",
	"es": "Spain",
	"de": "Germany",
	"it": "Italy",
	"id": "Indonesia",
	"us": "United States",
}

// ParseBookingURL validates a Booking.com hotel URL such as
// https://www.booking.com/hotel/id/asri-villas.fr.html.
func ParseBookingURL(raw string) (HotelRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return HotelRef{}, ErrInvalidURL
	}
	host := strings.ToLower(u.Hostname())
	if host != "booking.com" && !strings.HasSuffix(host, ".booking.com") {
		return HotelRef{}, ErrNotBookingURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, p := range parts {
		if p == "hotel" {
			idx = i
			break
		}
	}
	if idx == -1 {
		return HotelRef{}, ErrNotHotelPage
	}
	rest := parts[idx+1:]
	if len(rest) == 0 {
		return HotelRef{}, ErrMissingHotel
	}

	// /hotel/<cc>/<slug> is the usual form; /hotel/<slug> also occurs.
	country := "us"
	if sub := strings.SplitN(host, ".", 2)[0]; countryCode.MatchString(sub) {
		country = sub
	}
	slug := rest[0]
	if len(rest) > 1 {
		if countryCode.MatchString(rest[0]) {
			country = rest[0]
		}
		slug = rest[1]
	}
	slug = langSuffix.ReplaceAllString(strings.ToLower(slug), "")
	if len(slug) < 2 {
		return HotelRef{}, ErrMissingHotel
	}

	location, ok := countryNames[country]
	if !ok {
		location = "Unknown"
	}
	return HotelRef{
		Slug:     slug,
		Name:     humanizeSlug(slug),
		Country:  country,
		Location: location,
	}, nil
}
