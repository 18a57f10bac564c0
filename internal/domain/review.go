package domain

type Review struct {
	ID         int64
	HotelSlug  string
	SourceID   *string
	Author     *string
	Score      *float64 // normalized to 0-5
	Lang       *string
	Title      *string
	Text       *string
	ReviewDate *string // YYYY-MM-DD as exported by the scraper
	RawJSON    []byte  // original CSV row
}

// ScrapeExport is the newest review export found for one hotel.
type ScrapeExport struct {
	Slug   string
	Folder string
	Rows   []map[string]any
}
