package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staybook/internal/app"
	"staybook/internal/auth"
	"staybook/internal/domain"
)

type Handlers struct {
	Hotels   *app.HotelService
	Rooms    *app.RoomService
	Bookings *app.BookingService
	Reviews  *app.ReviewService
	Users    *app.UserService
	Payments *app.PaymentService
	Q        *app.QueryService
	Tokens   *auth.Manager
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/auth/register", h.register)
	s.mux.Post("/v1/auth/login", h.login)

	s.mux.Get("/v1/hotels", h.listHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/hotels/{id}/rooms", h.listRooms)
	s.mux.Get("/v1/hotels/{id}/reviews", h.listReviews)

	s.mux.Post("/v1/payments/webhook", h.paymentWebhook)

	s.mux.Group(func(m chi.Router) {
		m.Use(RequireAuth(h.Tokens))

		m.Get("/v1/me", h.me)
		m.Get("/v1/me/bookings", h.myBookings)

		m.Post("/v1/hotels", h.createHotel)
		m.Patch("/v1/hotels/{id}", h.updateHotel)
		m.Delete("/v1/hotels/{id}", h.deleteHotel)
		m.With(RequireAdmin).Delete("/v1/hotels/{id}/hard", h.hardDeleteHotel)

		m.Post("/v1/hotels/{id}/rooms", h.createRoom)
		m.Get("/v1/rooms/{id}", h.getRoom)
		m.Patch("/v1/rooms/{id}", h.updateRoom)
		m.Delete("/v1/rooms/{id}", h.deleteRoom)
		m.Get("/v1/rooms/{id}/bookings", h.listRoomBookings)
		m.Get("/v1/rooms/{id}/quote", h.quote)

		m.Post("/v1/bookings", h.createBooking)
		m.Get("/v1/bookings/{id}", h.getBooking)
		m.Patch("/v1/bookings/{id}", h.updateBooking)
		m.Post("/v1/bookings/{id}/cancel", h.cancelBooking)

		m.Post("/v1/bookings/{id}/payment", h.createPayment)
		m.Get("/v1/bookings/{id}/payment", h.getPayment)
		m.With(RequireAdmin).Post("/v1/payments/{id}/refund", h.refundPayment)

		m.Post("/v1/hotels/{id}/reviews", h.createReview)
		m.Delete("/v1/reviews/{id}", h.deleteReview)
	})
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// respondErr translates domain errors into problem responses; anything
// unrecognized is logged and becomes a generic 500.
func respondErr(w http.ResponseWriter, err error) {
	var active *domain.ActiveBookingsError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, domain.ErrRoomUnavailable),
		errors.Is(err, domain.ErrDuplicateHotel),
		errors.Is(err, domain.ErrDuplicateRoomNumber),
		errors.Is(err, domain.ErrDuplicateReview),
		errors.Is(err, domain.ErrDuplicatePayment),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrPaymentAlreadySettled),
		errors.Is(err, domain.ErrGatewayMismatch):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &active):
		writeProblem(w, http.StatusConflict, "Conflict", active.Error())
	case errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrBookingNotEditable),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrCancellationClosed),
		errors.Is(err, domain.ErrReviewNotEligible):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

func pageQuery(r *http.Request) domain.PageQuery {
	pg := domain.PageQuery{Limit: 50}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if l, err := strconv.Atoi(ls); err == nil && l > 0 && l <= 200 {
			pg.Limit = l
		}
	}
	if os := r.URL.Query().Get("offset"); os != "" {
		if o, err := strconv.Atoi(os); err == nil && o >= 0 {
			pg.Offset = o
		}
	}
	return pg
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v with an ETag, short-circuiting on If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}
