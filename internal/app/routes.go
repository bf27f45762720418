package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))

	r.Get("/healthcheck", app.GetHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/shows", func(r chi.Router) {
		r.Post("/", app.CreateShowHandler)
		r.Get("/", app.ListShowsHandler)

		r.Route("/{showId}", func(r chi.Router) {
			r.Get("/", app.GetShowHandler)
			r.Get("/seats", app.GetSeatMapHandler)
			r.Post("/quote", app.QuoteHandler)
			r.With(app.reserveTimeout).Post("/bookings", app.CreateBookingHandler)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", app.ListBookingsHandler)

		r.Route("/{bookingId}", func(r chi.Router) {
			r.Get("/", app.GetBookingHandler)
			r.With(app.reserveTimeout).Delete("/", app.CancelBookingHandler)
		})
	})

	return r
}
