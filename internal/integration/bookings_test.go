package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/seat-reservation/api"
	"github.com/metinatakli/seat-reservation/internal/app"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BookingsTestSuite struct {
	BaseSuite
}

func TestBookingsTestSuite(t *testing.T) {
	suite.Run(t, new(BookingsTestSuite))
}

func bookingBody(name string, seats ...string) string {
	body, _ := json.Marshal(api.CreateBookingRequest{
		SeatIds:  seats,
		Customer: api.Customer{Name: name, Phone: TestCustomerPhone},
	})

	return string(body)
}

func (s *BookingsTestSuite) TestCreateShow() {
	scenarios := []Scenario{
		{
			Name:   "registers a new movie with the default screen",
			Method: http.MethodPost,
			URL:    "/shows",
			Body: strings.NewReader(`{
				"movieTitle": "Dune: Part Two",
				"screenId": 1,
				"startTime": "2026-03-01T19:30:00Z",
				"price": "150"
			}`),
			ExpectedStatus: http.StatusCreated,
			ExpectedResponse: `{
				"movieId": 1,
				"movieTitle": "Dune: Part Two",
				"screenId": 1,
				"startTime": "2026-03-01T19:30:00Z",
				"price": "150",
				"rows": 6,
				"columns": 10,
				"blockedSeats": []
			}`,
		},
		{
			Name:   "unknown movie",
			Method: http.MethodPost,
			URL:    "/shows",
			Body: strings.NewReader(`{
				"movieId": 404,
				"screenId": 1,
				"startTime": "2026-03-01T19:30:00Z",
				"price": "150"
			}`),
			ExpectedStatus: http.StatusNotFound,
			ExpectedResponse: fmt.Sprintf(`{"message": %q}`, app.ErrNotFound),
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

// TestBookingScenario books A1 and A2, loses A2 to the first customer and
// then settles for A3 on the same 150 priced show.
func (s *BookingsTestSuite) TestBookingScenario() {
	show := seedShow(s.T(), s.app)
	bookingsURL := fmt.Sprintf("/shows/%d/bookings", show.ID)

	scenarios := []Scenario{
		{
			Name:           "quote two seats",
			Method:         http.MethodPost,
			URL:            fmt.Sprintf("/shows/%d/quote", show.ID),
			Body:           strings.NewReader(`{"seatIds": ["A2", "A1"]}`),
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: `{
				"seatIds": ["A1", "A2"],
				"seatCount": 2,
				"totalAmount": "300"
			}`,
		},
		{
			Name:           "first customer books A1 and A2",
			Method:         http.MethodPost,
			URL:            bookingsURL,
			Body:           strings.NewReader(bookingBody("Ada", "A1", "A2")),
			ExpectedStatus: http.StatusCreated,
			ExpectedResponse: fmt.Sprintf(`{
				"showId": %d,
				"customerName": "Ada",
				"customerPhone": %q,
				"seats": ["A1", "A2"],
				"totalAmount": "300",
				"status": "confirmed"
			}`, show.ID, TestCustomerPhone),
		},
		{
			Name:           "second customer conflicts on A2",
			Method:         http.MethodPost,
			URL:            bookingsURL,
			Body:           strings.NewReader(bookingBody("Grace", "A2", "A3")),
			ExpectedStatus: http.StatusConflict,
			ExpectedResponse: fmt.Sprintf(`{
				"message": %q,
				"seats": ["A2"]
			}`, app.ErrSeatConflict),
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				booked, err := app.PostgresStore.BookedSeats(context.Background(), show.ID)
				require.NoError(t, err)
				assert.Equal(t, []domain.SeatID{"A1", "A2"}, booked)
			},
		},
		{
			Name:           "second customer retries with A3",
			Method:         http.MethodPost,
			URL:            bookingsURL,
			Body:           strings.NewReader(bookingBody("Grace", "A3")),
			ExpectedStatus: http.StatusCreated,
			ExpectedResponse: fmt.Sprintf(`{
				"showId": %d,
				"customerName": "Grace",
				"customerPhone": %q,
				"seats": ["A3"],
				"totalAmount": "150",
				"status": "confirmed"
			}`, show.ID, TestCustomerPhone),
		},
		{
			Name:           "empty selection",
			Method:         http.MethodPost,
			URL:            bookingsURL,
			Body:           strings.NewReader(bookingBody("Grace")),
			ExpectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}

	rec := s.get(fmt.Sprintf("/shows/%d/seats", show.ID))
	s.Require().Equal(http.StatusOK, rec.StatusCode)

	var seatMap api.SeatMapResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&seatMap))

	s.Equal(60, seatMap.Bookable)
	s.Equal(57, seatMap.Available)
	s.Equal(api.SeatStatusBooked, seatMap.Rows[0].Seats[2].Status)
	s.Equal(api.SeatStatusAvailable, seatMap.Rows[0].Seats[3].Status)

	rec = s.get(fmt.Sprintf("/bookings?showId=%d", show.ID))
	s.Require().Equal(http.StatusOK, rec.StatusCode)

	var report api.BookingsResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&report))

	s.Require().Len(report.Bookings, 2)
	s.Equal("Grace", report.Bookings[0].CustomerName)
	s.Equal(TestMovieTitle, report.Bookings[0].MovieTitle)
	s.Equal("Ada", report.Bookings[1].CustomerName)
	s.Equal(2, report.Metadata.TotalRecords)
}

func (s *BookingsTestSuite) TestCancelBooking() {
	show := seedShow(s.T(), s.app)

	booking, err := s.app.Engine(s.app.PostgresStore).Book(context.Background(), show.ID, []domain.SeatID{"F1"}, testCustomer())
	s.Require().NoError(err)

	bookingURL := "/bookings/" + booking.ID.String()

	scenarios := []Scenario{
		{
			Name:           "cancel confirmed booking",
			Method:         http.MethodDelete,
			URL:            bookingURL,
			ExpectedStatus: http.StatusNoContent,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				booked, err := app.PostgresStore.BookedSeats(context.Background(), show.ID)
				require.NoError(t, err)
				assert.Empty(t, booked)
			},
		},
		{
			Name:           "cancel twice",
			Method:         http.MethodDelete,
			URL:            bookingURL,
			ExpectedStatus: http.StatusNotFound,
		},
		{
			Name:           "cancelled booking stays readable",
			Method:         http.MethodGet,
			URL:            bookingURL,
			ExpectedStatus: http.StatusOK,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var got api.Booking
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				assert.Equal(t, string(domain.BookingStatusCancelled), got.Status)
				assert.NotNil(t, got.CancelledAt)
			},
		},
		{
			Name:           "seat can be booked again",
			Method:         http.MethodPost,
			URL:            fmt.Sprintf("/shows/%d/bookings", show.ID),
			Body:           strings.NewReader(bookingBody("Grace", "F1")),
			ExpectedStatus: http.StatusCreated,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *BookingsTestSuite) get(url string) *http.Response {
	req, err := prepareRequest(http.MethodGet, url, nil, nil)
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(rec, req)

	return rec.Result()
}

func (s *BookingsTestSuite) TestShowRepositoryOnClosedPool() {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, s.dbContainer.ConnectionString)
	s.Require().NoError(err)
	pool.Close()

	repo := repository.NewPostgresShowRepository(pool)

	_, err = repo.GetShow(ctx, 1)
	s.ErrorIs(err, domain.ErrStoreUnavailable)
	s.NotErrorIs(err, domain.ErrRecordNotFound)

	_, err = repo.ListShows(ctx, domain.ShowFilters{})
	s.ErrorIs(err, domain.ErrStoreUnavailable)

	err = repo.CreateShow(ctx, &domain.Show{MovieTitle: "Dune", ScreenID: 1, Screen: domain.ScreenConfig{Rows: 1, Columns: 1}})
	s.ErrorIs(err, domain.ErrStoreUnavailable)
}
