package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/metinatakli/seat-reservation/internal/domain"
)

type MemoryShowRepository struct {
	mu          sync.RWMutex
	shows       map[domain.ShowID]domain.Show
	movies      map[int64]string
	nextID      domain.ShowID
	nextMovieID int64
}

func NewMemoryShowRepository() *MemoryShowRepository {
	return &MemoryShowRepository{
		shows:  make(map[domain.ShowID]domain.Show),
		movies: make(map[int64]string),
	}
}

func (m *MemoryShowRepository) GetShow(ctx context.Context, id domain.ShowID) (*domain.Show, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	show, ok := m.shows[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	show = cloneShow(show)

	return &show, nil
}

// CreateShow assigns the next id to show and stores a copy of it. A zero
// MovieID registers a new movie under show.MovieTitle.
func (m *MemoryShowRepository) CreateShow(ctx context.Context, show *domain.Show) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if show.MovieID == 0 {
		m.nextMovieID++
		show.MovieID = m.nextMovieID
		m.movies[show.MovieID] = show.MovieTitle
	}

	title, ok := m.movies[show.MovieID]
	if !ok {
		return fmt.Errorf("movie %d: %w", show.MovieID, domain.ErrRecordNotFound)
	}

	m.nextID++
	show.ID = m.nextID
	show.MovieTitle = title
	m.shows[show.ID] = cloneShow(*show)

	return nil
}

func (m *MemoryShowRepository) ListShows(ctx context.Context, filters domain.ShowFilters) ([]domain.Show, error) {
	m.mu.RLock()
	shows := make([]domain.Show, 0, len(m.shows))
	for _, show := range m.shows {
		if filters.MovieID != nil && show.MovieID != *filters.MovieID {
			continue
		}

		shows = append(shows, cloneShow(show))
	}
	m.mu.RUnlock()

	slices.SortFunc(shows, func(a, b domain.Show) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}

		return int(a.ID - b.ID)
	})

	return shows, nil
}

func cloneShow(show domain.Show) domain.Show {
	show.Screen.Blocked = slices.Clone(show.Screen.Blocked)
	return show
}
