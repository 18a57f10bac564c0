package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"hotel_advisor/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	insights, _ := json.Marshal(h.KeyInsights)
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.Slug,
		h.Name,
		valStr(h.Location),
		valStr(h.Country),
		valF64(h.Rating),
		h.TotalReviews,
		string(insights),
		valStr(h.SourceURL),
	)
	return err
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*9) // 9 params per row
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.HotelSlug,          // hotel_slug
			valStr(rv.SourceID),   // source_id
			valStr(rv.Author),     // author
			valF64(rv.Score),      // score
			valStr(rv.Lang),       // lang
			valStr(rv.Title),      // title
			valStr(rv.Text),       // text
			valStr(rv.ReviewDate), // review_date
			valJSON(rv.RawJSON),   // raw
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, slug string, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, slug, reason)
	return err
}

func (r *Repo) SaveRecommendation(ctx context.Context, rec domain.RecommendationRecord) error {
	hotels, err := json.Marshal(rec.Hotels)
	if err != nil {
		return err
	}
	criteria, err := json.Marshal(rec.Criteria)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertRecommendationSQL,
		rec.ID,
		rec.CreatedAt,
		rec.Model,
		string(hotels),
		string(criteria),
		rec.Success,
		rec.TopChoice,
		rec.Recommendation,
		rec.RawResponse,
		valStr(rec.Error),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotel(row rowScanner) (domain.Hotel, error) {
	var h domain.Hotel
	var location, country, sourceURL sql.NullString
	var rating sql.NullFloat64
	var insights []byte
	if err := row.Scan(&h.Slug, &h.Name, &location, &country, &rating, &h.TotalReviews, &insights, &sourceURL); err != nil {
		return domain.Hotel{}, err
	}
	h.Location = nullStr(location)
	h.Country = nullStr(country)
	h.SourceURL = nullStr(sourceURL)
	if rating.Valid {
		f := rating.Float64
		h.Rating = &f
	}
	_ = json.Unmarshal(insights, &h.KeyInsights)
	return h, nil
}

func (r *Repo) GetHotel(ctx context.Context, slug string) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) ListHotels(ctx context.Context, limit int) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, slug string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, slug, pg.Limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			sourceID, author, lang sql.NullString
			title, text, date      sql.NullString
			score                  sql.NullFloat64
			rawB                   sql.RawBytes
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.HotelSlug,
			&sourceID,
			&author,
			&score,
			&lang,
			&title,
			&text,
			&date,
			&rawB,
		); err != nil {
			return domain.ReviewsPage{}, err
		}

		rv.SourceID = nullStr(sourceID)
		rv.Author = nullStr(author)
		rv.Lang = nullStr(lang)
		rv.Title = nullStr(title)
		rv.Text = nullStr(text)
		rv.ReviewDate = nullStr(date)
		if score.Valid {
			f := score.Float64
			rv.Score = &f
		}
		if len(rawB) > 0 {
			rv.RawJSON = append([]byte(nil), rawB...)
		}

		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}
