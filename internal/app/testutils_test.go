package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/seat-reservation/api"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/events"
	"github.com/metinatakli/seat-reservation/internal/repository"
	"github.com/metinatakli/seat-reservation/internal/reservation"
	"github.com/metinatakli/seat-reservation/internal/validator"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

// newTestApplication wires handlers to in-memory repositories. Nil arguments
// fall back to fresh memory implementations.
func newTestApplication(showRepo domain.ShowRepository, store domain.InventoryStore) *Application {
	if showRepo == nil {
		showRepo = repository.NewMemoryShowRepository()
	}
	if store == nil {
		store = repository.NewMemoryInventoryStore()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.NewValidator()

	cfg := Config{
		Env:            "test",
		Store:          StoreMemory,
		ReserveTimeout: time.Second,
	}

	engine := reservation.NewEngine(showRepo, store, v, events.NoopPublisher{}, logger)

	return NewApp(cfg, logger, v, showRepo, engine)
}

// seedShow stores a show with a 6x10 screen priced at 150 and returns its id.
func seedShow(t *testing.T, app *Application, title string) domain.ShowID {
	t.Helper()

	show := domain.Show{
		MovieTitle: title,
		ScreenID:   1,
		StartTime:  time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
		Price:      decimal.NewFromInt(150),
		Screen: domain.ScreenConfig{
			Rows:    domain.DefaultSeatRows,
			Columns: domain.DefaultSeatColumns,
		},
	}

	err := app.showRepo.CreateShow(context.Background(), &show)
	if err != nil {
		t.Fatalf("Failed to seed show: %v", err)
	}

	return show.ID
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(method, url, bytes.NewReader(jsonData))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// serve runs a request through the full router so URL parameters resolve.
func serve(t *testing.T, app *Application, method, url string, body any) *httptest.ResponseRecorder {
	w, r := executeRequest(t, method, url, body)
	app.Routes().ServeHTTP(w, r)

	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return resp
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		if tt.wantErrMessage == "" || validationResp.Message == tt.wantErrMessage {
			return
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
