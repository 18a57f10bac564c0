// internal/adapters/scraper/reader.go
package scraper

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hotel_advisor/internal/domain"
)

// ReviewsFile is the export written by the booking reviews scraper when run
// with --sort-by newest_first.
const ReviewsFile = "reviews_newest_first.csv"

// Dir reads scraper output laid out as <dir>/<slug>_<timestamp>/ReviewsFile.
type Dir struct{ root string }

func NewDir(root string) *Dir { return &Dir{root: root} }

// Hotels returns the distinct slugs found under root, sorted.
func (d *Dir) Hotels(ctx context.Context) ([]string, error) {
	ents, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		if slug, ok := splitFolder(e.Name()); ok {
			seen[slug] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, ctx.Err()
}

// Latest parses the newest export of slug. Folder timestamps sort
// lexically, so the greatest name wins.
func (d *Dir) Latest(ctx context.Context, slug string) (domain.ScrapeExport, error) {
	ents, err := os.ReadDir(d.root)
	if err != nil {
		return domain.ScrapeExport{}, err
	}
	var folders []string
	for _, e := range ents {
		if s, ok := splitFolder(e.Name()); ok && e.IsDir() && s == slug {
			folders = append(folders, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(folders)))

	for _, f := range folders {
		if err := ctx.Err(); err != nil {
			return domain.ScrapeExport{}, err
		}
		path := filepath.Join(d.root, f, ReviewsFile)
		rows, err := readCSV(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.ScrapeExport{}, fmt.Errorf("read %s: %w", path, err)
		}
		return domain.ScrapeExport{Slug: slug, Folder: f, Rows: rows}, nil
	}
	return domain.ScrapeExport{}, fmt.Errorf("export for %s: %w", slug, domain.ErrNotFound)
}

// splitFolder splits "asri-villas_2024-11-09_10-15" at the first underscore.
func splitFolder(name string) (string, bool) {
	i := strings.IndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return "", false
	}
	return name[:i], true
}

func readCSV(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []map[string]any
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(header))
		empty := true
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v != "" {
				empty = false
			}
			row[h] = v
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
