package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/staybook/staybook-backend/api/controllers"
	cartcontrollers "github.com/staybook/staybook-backend/api/controllers/cart"
	"github.com/staybook/staybook-backend/api/middleware"
	"github.com/staybook/staybook-backend/internal/cart"
	checkoutsvc "github.com/staybook/staybook-backend/internal/checkout"
	"github.com/staybook/staybook-backend/pkg/config"
	"github.com/staybook/staybook-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	gatherer prometheus.Gatherer,
	roomRepo controllers.RoomReader,
	bookingRepo controllers.BookingReader,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisP,
		}))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Route("/v1/rooms", func(r chi.Router) {
			r.Get("/", controllers.PublicRoomsList(roomRepo, logg))
			r.Get("/{roomId}", controllers.PublicRoomDetail(roomRepo, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Patch("/items/{roomId}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{roomId}", cartcontrollers.CartRemoveItem(cartService, logg))
		})

		r.Route("/v1/checkout", func(r chi.Router) {
			r.Get("/summary", controllers.CheckoutSummary(checkoutService, logg))
			r.Post("/", controllers.Checkout(checkoutService, logg))
		})

		r.Route("/v1/bookings", func(r chi.Router) {
			r.Get("/", controllers.MyBookings(bookingRepo, logg))
			r.Get("/{bookingId}", controllers.MyBookingDetail(bookingRepo, logg))
		})
	})

	return r
}
