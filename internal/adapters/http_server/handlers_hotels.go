package httpserver

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type hotelRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Rating  float64 `json:"rating"`
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.City == "" {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "name and city are required")
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "rating must be between 0 and 5")
		return
	}
	hotel, err := h.Hotels.Create(r.Context(), app.HotelInput{
		Name: req.Name, Address: req.Address, City: req.City,
		Country: req.Country, Rating: req.Rating,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHotelDTO(hotel))
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	hotel, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCached(w, r, toHotelDTO(hotel))
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	pg := pageQuery(r)
	q := domain.HotelsQuery{Limit: pg.Limit, Offset: pg.Offset}
	if c := r.URL.Query().Get("city"); c != "" {
		q.City = &c
	}
	if c := r.URL.Query().Get("country"); c != "" {
		q.Country = &c
	}
	page, err := h.Q.ListHotels(r.Context(), q)
	if err != nil {
		respondErr(w, err)
		return
	}
	items := make([]hotelDTO, 0, len(page.Items))
	for _, hotel := range page.Items {
		items = append(items, toHotelDTO(hotel))
	}
	writeCached(w, r, map[string]any{"items": items, "total": page.Total})
}

type updateHotelRequest struct {
	Name    *string  `json:"name"`
	Address *string  `json:"address"`
	City    *string  `json:"city"`
	Country *string  `json:"country"`
	Rating  *float64 `json:"rating"`
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateHotelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "rating must be between 0 and 5")
		return
	}
	hotel, err := h.Hotels.Update(r.Context(), app.UpdateHotelInput{
		ID: id, Name: req.Name, Address: req.Address,
		City: req.City, Country: req.Country, Rating: req.Rating,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelDTO(hotel))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Hotels.SoftDelete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) hardDeleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Hotels.HardDelete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- rooms ----

type roomRequest struct {
	RoomNumber    string `json:"room_number"`
	Type          string `json:"type"`
	PricePerNight string `json:"price_per_night"`
	Capacity      int    `json:"capacity"`
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req roomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	roomType, ok := domain.ParseRoomType(req.Type)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "type must be standard, deluxe, or suite")
		return
	}
	price, err := decimal.NewFromString(req.PricePerNight)
	if err != nil || price.IsNegative() {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "price_per_night must be a non-negative decimal")
		return
	}
	if req.RoomNumber == "" || req.Capacity <= 0 {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "room_number and a positive capacity are required")
		return
	}
	room, err := h.Rooms.Create(r.Context(), app.CreateRoomInput{
		HotelID: hotelID, RoomNumber: req.RoomNumber, Type: roomType,
		PricePerNight: price, Capacity: req.Capacity,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomDTO(room))
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	room, err := h.Rooms.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(room))
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r)
	if !ok {
		return
	}
	rooms, err := h.Q.ListRooms(r.Context(), hotelID, pageQuery(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCached(w, r, toRoomDTOs(rooms))
}

type updateRoomRequest struct {
	RoomNumber    *string `json:"room_number"`
	Type          *string `json:"type"`
	PricePerNight *string `json:"price_per_night"`
	Capacity      *int    `json:"capacity"`
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateRoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := app.UpdateRoomInput{ID: id, RoomNumber: req.RoomNumber, Capacity: req.Capacity}
	if req.Type != nil {
		t, ok := domain.ParseRoomType(*req.Type)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "type must be standard, deluxe, or suite")
			return
		}
		in.Type = &t
	}
	if req.PricePerNight != nil {
		p, err := decimal.NewFromString(*req.PricePerNight)
		if err != nil || p.IsNegative() {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "price_per_night must be a non-negative decimal")
			return
		}
		in.PricePerNight = &p
	}
	room, err := h.Rooms.Update(r.Context(), in)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(room))
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if err := h.Rooms.Delete(r.Context(), id, force); err != nil {
		var active *domain.ActiveBookingsError
		if errors.As(err, &active) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":       "room has active bookings",
				"booking_ids": active.BookingIDs,
			})
			return
		}
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
