package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/seat-reservation/internal/domain"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

const showColumns = `
	s.id,
	s.movie_id,
	m.title,
	s.screen_id,
	s.start_time,
	s.price,
	s.seat_rows,
	s.seat_cols,
	s.blocked_seats
`

func (p *PostgresShowRepository) GetShow(ctx context.Context, id domain.ShowID) (*domain.Show, error) {
	query := `
		SELECT ` + showColumns + `
		FROM shows s
		JOIN movies m ON m.id = s.movie_id
		WHERE s.id = $1
	`

	show, err := scanShow(p.db.QueryRow(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, domain.StoreUnavailable(err)
	}

	return show, nil
}

// CreateShow registers a new movie first when show.MovieID is zero. Otherwise
// the movie must already exist.
func (p *PostgresShowRepository) CreateShow(ctx context.Context, show *domain.Show) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		if show.MovieID == 0 {
			query := `INSERT INTO movies (title) VALUES ($1) RETURNING id`

			if err := tx.QueryRow(ctx, query, show.MovieTitle).Scan(&show.MovieID); err != nil {
				return mapPostgresError(err, "movie")
			}
		}

		query := `
			WITH inserted AS (
				INSERT INTO shows (movie_id, screen_id, start_time, price, seat_rows, seat_cols, blocked_seats)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id, movie_id
			)
			SELECT i.id, m.title
			FROM inserted i
			JOIN movies m ON m.id = i.movie_id
		`

		var id int64

		err := tx.QueryRow(
			ctx,
			query,
			show.MovieID,
			show.ScreenID,
			show.StartTime,
			show.Price,
			show.Screen.Rows,
			show.Screen.Columns,
			fromSeatIDs(show.Screen.Blocked),
		).Scan(&id, &show.MovieTitle)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("movie %d: %w", show.MovieID, domain.ErrRecordNotFound)
			}

			return mapPostgresError(err, fmt.Sprintf("movie %d", show.MovieID))
		}

		show.ID = domain.ShowID(id)

		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return domain.StoreUnavailable(err)
	}

	return err
}

func (p *PostgresShowRepository) ListShows(ctx context.Context, filters domain.ShowFilters) ([]domain.Show, error) {
	query := `
		SELECT ` + showColumns + `
		FROM shows s
		JOIN movies m ON m.id = s.movie_id
		WHERE ($1::bigint IS NULL OR s.movie_id = $1)
		ORDER BY s.start_time, s.id
	`

	rows, err := p.db.Query(ctx, query, filters.MovieID)
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}
	defer rows.Close()

	shows := []domain.Show{}

	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, domain.StoreUnavailable(err)
		}

		shows = append(shows, *show)
	}

	if err = rows.Err(); err != nil {
		return nil, domain.StoreUnavailable(err)
	}

	return shows, nil
}

func scanShow(row pgx.Row) (*domain.Show, error) {
	var (
		show    domain.Show
		id      int64
		blocked []string
	)

	err := row.Scan(
		&id,
		&show.MovieID,
		&show.MovieTitle,
		&show.ScreenID,
		&show.StartTime,
		&show.Price,
		&show.Screen.Rows,
		&show.Screen.Columns,
		&blocked,
	)
	if err != nil {
		return nil, err
	}

	show.ID = domain.ShowID(id)
	show.StartTime = show.StartTime.UTC()
	show.Screen.Blocked = toSeatIDs(blocked)

	return &show, nil
}
