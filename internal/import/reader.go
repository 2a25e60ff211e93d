// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//nolint:revive // package name with underscore is intentional for clarity
package movielens_import

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// DuckDB driver - read_csv_auto parses the MovieLens files
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
)

// DefaultQueryTimeout bounds every DuckDB query issued by a Reader.
const DefaultQueryTimeout = 2 * time.Minute

// genreSeparator separates genre labels in movies.csv.
const genreSeparator = "|"

// Reader loads MovieLens CSV files through an in-memory DuckDB connection.
type Reader struct {
	db           *sql.DB
	logger       zerolog.Logger
	queryTimeout time.Duration
}

// NewReader opens an in-memory DuckDB connection for CSV ingestion.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReader(logger zerolog.Logger) (*Reader, error) {
	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return &Reader{
		db:           db,
		logger:       logger.With().Str("component", "movielens_import").Logger(),
		queryTimeout: DefaultQueryTimeout,
	}, nil
}

// SetQueryTimeout overrides DefaultQueryTimeout. Non-positive values are ignored.
func (r *Reader) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		r.queryTimeout = d
	}
}

// Close closes the DuckDB connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// csvSource renders a read_csv_auto table function over path. Every column
// is read as VARCHAR so that malformed numbers can be filtered with TRY_CAST
// instead of failing the whole scan.
func csvSource(path string) string {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	return fmt.Sprintf("read_csv_auto(%s, header = true, all_varchar = true)", quoted)
}

// countRows returns the number of data rows in the CSV file at path.
func (r *Reader) countRows(ctx context.Context, path string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+csvSource(path)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", path, err)
	}
	return n, nil
}

// LoadMovies reads movies.csv (movieId,title,genres) in file order.
// Rows with a missing or non-numeric movieId, a missing title or missing
// genres are dropped. It returns the kept items and the number dropped.
func (r *Reader) LoadMovies(ctx context.Context, path string) ([]recommend.Item, int, error) {
	total, err := r.countRows(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	qctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		SELECT
			TRY_CAST(movieId AS BIGINT) AS movie_id,
			title,
			genres
		FROM ` + csvSource(path) + `
		WHERE TRY_CAST(movieId AS BIGINT) IS NOT NULL
			AND title IS NOT NULL
			AND genres IS NOT NULL
	`

	rows, err := r.db.QueryContext(qctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	items := make([]recommend.Item, 0, total)
	for rows.Next() {
		var (
			id     int64
			title  string
			genres string
		)
		if err := rows.Scan(&id, &title, &genres); err != nil {
			return nil, 0, fmt.Errorf("scan movie: %w", err)
		}
		items = append(items, recommend.Item{
			ID:     int(id),
			Title:  title,
			Genres: splitGenres(genres),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movies: %w", err)
	}

	return items, total - len(items), nil
}

// LoadRatings reads ratings.csv (userId,movieId,rating[,timestamp]) in file
// order. Rows with a missing or non-numeric field are dropped. It returns the
// kept ratings and the number dropped.
func (r *Reader) LoadRatings(ctx context.Context, path string) ([]recommend.Rating, int, error) {
	total, err := r.countRows(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	qctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		SELECT
			TRY_CAST(userId AS BIGINT) AS user_id,
			TRY_CAST(movieId AS BIGINT) AS movie_id,
			TRY_CAST(rating AS DOUBLE) AS rating
		FROM ` + csvSource(path) + `
		WHERE TRY_CAST(userId AS BIGINT) IS NOT NULL
			AND TRY_CAST(movieId AS BIGINT) IS NOT NULL
			AND TRY_CAST(rating AS DOUBLE) IS NOT NULL
	`

	rows, err := r.db.QueryContext(qctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]recommend.Rating, 0, total)
	for rows.Next() {
		var (
			userID, movieID int64
			value           float64
		)
		if err := rows.Scan(&userID, &movieID, &value); err != nil {
			return nil, 0, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, recommend.Rating{
			UserID: int(userID),
			ItemID: int(movieID),
			Value:  value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ratings: %w", err)
	}

	return ratings, total - len(ratings), nil
}

// splitGenres splits a pipe-separated genre string. Labels are kept verbatim,
// including the "(no genres listed)" placeholder.
func splitGenres(s string) []string {
	parts := strings.Split(s, genreSeparator)
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}
