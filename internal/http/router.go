package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"havens-pos-service/internal/auth"
	"havens-pos-service/internal/config"
	"havens-pos-service/internal/http/handlers"
	"havens-pos-service/internal/middleware"
	"havens-pos-service/internal/services"
	"havens-pos-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewRouter(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config, registry *services.Registry, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{DB: db, Logger: logger, Config: cfg, Services: registry}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.StaffAuth(cfg.JWTSecret))

		r.Route("/tables", func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapManageTables))
			r.Get("/", h.ListTables)
			r.Get("/available", h.ListAvailableTables)
			r.Post("/{id}/occupy", h.OccupyTable)
			r.Post("/{id}/free", h.FreeTable)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(auth.CapTakeOrders))
				r.Post("/", h.CreateOrder)
				r.Get("/", h.ListActiveOrders)
				r.Get("/{id}", h.GetOrder)
				r.Get("/{id}/receipt", h.OrderReceiptPDF)
				r.Post("/{id}/items", h.AddOrderItem)
				r.Patch("/{id}/items/{itemId}", h.UpdateOrderItem)
				r.Delete("/{id}/items/{itemId}", h.RemoveOrderItem)
				r.Patch("/{id}/charges", h.SetOrderCharges)
				r.Post("/{id}/confirm", h.ConfirmOrder)
				r.Post("/{id}/cancel", h.CancelOrder)
				r.Post("/{id}/serve", h.ServeOrder)
				r.Post("/{id}/complete", h.CompleteOrder)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(auth.CapManagePayments))
				r.Post("/{id}/payments", h.AddOrderPayment)
			})
		})

		r.Route("/kitchen", func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapKitchenDisplay))
			r.Get("/queue", h.KitchenQueue)
			r.Get("/overdue", h.KitchenOverdue)
			r.Post("/displays/{id}/start", h.StartKitchenItem)
			r.Post("/displays/{id}/complete", h.CompleteKitchenItem)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapManageRooms))
			r.Get("/", h.ListRooms)
			r.Get("/available", h.ListAvailableRooms)
			r.Patch("/{id}/status", h.SetRoomStatus)
			r.Post("/{id}/cleaned", h.MarkRoomCleaned)
			r.Post("/{id}/maintenance", h.ScheduleRoomMaintenance)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapManageRooms))
			r.Post("/{id}/start", h.StartRoomMaintenance)
			r.Post("/{id}/complete", h.CompleteRoomMaintenance)
			r.Post("/{id}/cancel", h.CancelRoomMaintenance)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapManageRooms))
			r.Post("/", h.CreateBooking)
			r.Get("/arrivals", h.ArrivalsToday)
			r.Get("/departures", h.DeparturesToday)
			r.Get("/{id}", h.GetBooking)
			r.Post("/{id}/confirm", h.ConfirmBooking)
			r.Post("/{id}/check-in", h.CheckInBooking)
			r.Post("/{id}/check-out", h.CheckOutBooking)
			r.Post("/{id}/cancel", h.CancelBooking)
			r.Post("/{id}/no-show", h.NoShowBooking)
			r.Post("/{id}/services", h.AddBookingService)
			r.Post("/services/{serviceId}/assign", h.AssignBookingService)
			r.Post("/services/{serviceId}/complete", h.CompleteBookingService)
			r.Post("/services/{serviceId}/cancel", h.CancelBookingService)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapManageReservations))
			r.Post("/", h.CreateReservation)
			r.Get("/today", h.ReservationsToday)
			r.Get("/{id}", h.GetReservation)
			r.Post("/{id}/confirm", h.ConfirmReservation)
			r.Post("/{id}/seat", h.SeatReservation)
			r.Post("/{id}/complete", h.CompleteReservation)
			r.Post("/{id}/cancel", h.CancelReservation)
			r.Post("/{id}/no-show", h.NoShowReservation)
			r.Post("/{id}/notes", h.AddReservationNote)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Get("/{id}", h.GetCustomer)
		})
	})

	if wsServer != nil {
		r.Get("/ws/kitchen", wsServer.KitchenWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
