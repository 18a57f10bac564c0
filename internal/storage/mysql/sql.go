package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (slug, name, location, country, rating, total_reviews, key_insights, source_url)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  location      = COALESCE(VALUES(location), hotels.location),
  country       = COALESCE(VALUES(country), hotels.country),
  rating        = VALUES(rating),
  total_reviews = VALUES(total_reviews),
  key_insights  = VALUES(key_insights),
  source_url    = COALESCE(VALUES(source_url), hotels.source_url),
  updated_at    = CURRENT_TIMESTAMP
`

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n  (hotel_slug, source_id, author, score, lang, title, `text`, review_date, raw)\nVALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  author      = COALESCE(VALUES(author), reviews.author),\n" +
	"  score       = COALESCE(VALUES(score), reviews.score),\n" +
	"  lang        = COALESCE(VALUES(lang), reviews.lang),\n" +
	"  title       = COALESCE(VALUES(title), reviews.title),\n" +
	"  `text`      = COALESCE(VALUES(`text`), reviews.`text`),\n" +
	"  review_date = COALESCE(VALUES(review_date), reviews.review_date),\n" +
	"  raw         = COALESCE(VALUES(raw), reviews.raw)\n"

const insertMissSQL = `
INSERT INTO ingest_misses (slug, reason)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`

const insertRecommendationSQL = `
INSERT INTO recommendations
  (id, created_at, model, hotels, criteria, success, top_choice, recommendation, raw_response, error)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getHotelSQL = `
SELECT slug, name, location, country, rating, total_reviews, key_insights, source_url
FROM hotels
WHERE slug = ?
`

const listHotelsSQL = `
SELECT slug, name, location, country, rating, total_reviews, key_insights, source_url
FROM hotels
ORDER BY slug
LIMIT ?
`

// review_date is stored as exported (YYYY-MM-DD), so it sorts as text.
const listReviewsSQL = "SELECT id, hotel_slug, source_id, author, score, lang, title, `text`, review_date, raw\n" +
	"FROM reviews\n" +
	"WHERE hotel_slug = ?\n" +
	"ORDER BY review_date DESC, id DESC\n" +
	"LIMIT ?"
