package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/table-booking/internal/application/usecases"
	"github.com/example/table-booking/internal/domain/reservation"
	"github.com/example/table-booking/internal/lib/logger/sl"
)

type Server struct {
	Log     *slog.Logger
	Booking *usecases.Booking

	// Optional handlers mounted at /mcp and /metrics.
	MCP     http.Handler
	Metrics http.Handler
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}
	if s.MCP != nil {
		mux.Handle("/mcp", s.MCP)
	}

	mux.HandleFunc("GET /api/restaurants", s.handleRestaurants)
	mux.HandleFunc("GET /api/availability", s.handleAvailability)
	mux.HandleFunc("GET /api/reservations", s.handleListReservations)
	mux.HandleFunc("POST /api/reservations", s.handleCreateReservation)
	mux.HandleFunc("DELETE /api/reservations/{id}", s.handleCancelReservation)

	return s.logging(mux)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Log.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("took", time.Since(start)),
		)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Warn("failed to write response", sl.Err(err))
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.Log.Error("request failed", sl.Err(err))
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func (s *Server) handleRestaurants(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Booking.Catalog().Restaurants())
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	guests, err := strconv.Atoi(q.Get("guests"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "guests must be a positive integer"})
		return
	}

	res, err := s.Booking.CheckAvailability(r.Context(), q.Get("restaurant"), q.Get("date"), q.Get("time"), guests)
	if err != nil {
		s.internalError(w, err)
		return
	}
	code := http.StatusOK
	if res.Error != "" {
		code = http.StatusNotFound
		if strings.HasPrefix(res.Error, "guests") {
			code = http.StatusBadRequest
		}
	}
	s.writeJSON(w, code, res)
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req usecases.ReservationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	res, err := s.Booking.MakeReservation(r.Context(), req)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, bookingStatusCode(res), res)
}

func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.Booking.CancelReservation(r.Context(), r.PathValue("id"))
	if err != nil {
		s.internalError(w, err)
		return
	}
	code := http.StatusOK
	if res.Status != reservation.StatusCancelled {
		code = http.StatusNotFound
	}
	s.writeJSON(w, code, res)
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "phone is required"})
		return
	}
	res, err := s.Booking.ListReservations(r.Context(), phone)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func bookingStatusCode(res usecases.BookingResult) int {
	switch {
	case res.Status == reservation.StatusConfirmed:
		return http.StatusCreated
	case res.Error == usecases.ErrNoTables:
		return http.StatusConflict
	case strings.HasPrefix(res.Error, "Restaurant "):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Start serves h on addr until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, log *slog.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
