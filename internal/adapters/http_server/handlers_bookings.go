package httpserver

import (
	"net/http"
	"time"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type createBookingRequest struct {
	RoomID   int64     `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req createBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RoomID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "room_id is required")
		return
	}
	booking, err := h.Bookings.Create(r.Context(), app.CreateBookingInput{
		UserID:   claims.UserID,
		RoomID:   req.RoomID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(booking))
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	booking, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	claims, _ := claimsFrom(r.Context())
	if booking.UserID != claims.UserID && claims.Role != domain.RoleAdmin {
		writeProblem(w, http.StatusForbidden, "Forbidden", "not your booking")
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(booking))
}

type updateBookingRequest struct {
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Status   *string    `json:"status"`
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := app.UpdateBookingInput{ID: id, CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	if req.Status != nil {
		st, ok := domain.ParseBookingStatus(*req.Status)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "unknown status")
			return
		}
		in.Status = &st
	}
	booking, err := h.Bookings.Update(r.Context(), in)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(booking))
}

type cancelBookingRequest struct {
	Reason *string `json:"reason"`
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	booking, err := h.Bookings.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(booking))
}

func (h *Handlers) myBookings(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	bookings, err := h.Q.ListUserBookings(r.Context(), claims.UserID, pageQuery(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

func (h *Handlers) listRoomBookings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r)
	if !ok {
		return
	}
	bookings, err := h.Q.ListRoomBookings(r.Context(), roomID, pageQuery(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCached(w, r, toBookingDTOs(bookings))
}

// quote prices a stay without booking it.
func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r)
	if !ok {
		return
	}
	checkIn, err := time.Parse(time.RFC3339, r.URL.Query().Get("check_in"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "check_in must be RFC3339")
		return
	}
	checkOut, err := time.Parse(time.RFC3339, r.URL.Query().Get("check_out"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "check_out must be RFC3339")
		return
	}
	q, err := h.Bookings.Quote(r.Context(), roomID, checkIn, checkOut)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nights":       q.Nights,
		"nightly_rate": q.NightlyRate.StringFixed(2),
		"total":        q.Total.StringFixed(2),
	})
}
