package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"id":        {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

// resetState empties every table and the Redis keyspace between tests.
func resetState(t testing.TB, app *TestApp) {
	ctx := context.Background()

	_, err := app.DB.Exec(ctx, `TRUNCATE booking_seats, bookings, shows, movies RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	require.NoError(t, app.Redis.FlushDB(ctx).Err())
}

// seedShow registers a new movie and a 6x10 show for it.
func seedShow(t testing.TB, app *TestApp, blocked ...domain.SeatID) *domain.Show {
	show := &domain.Show{
		MovieTitle: TestMovieTitle,
		ScreenID:   TestScreenId,
		StartTime:  TestShowTime,
		Price:      TestShowPrice,
		Screen: domain.ScreenConfig{
			Rows:    domain.DefaultSeatRows,
			Columns: domain.DefaultSeatColumns,
			Blocked: blocked,
		},
	}

	require.NoError(t, app.ShowRepo.CreateShow(context.Background(), show))

	return show
}

func testCustomer() domain.Customer {
	return domain.Customer{Name: TestCustomerName, Phone: TestCustomerPhone}
}
