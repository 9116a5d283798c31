package httpserver

import (
	"net/http"

	"staybook/internal/app"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || len(req.Password) < 8 {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "email and a password of at least 8 characters are required")
		return
	}
	user, err := h.Users.Register(r.Context(), app.RegisterInput{
		Email: req.Email, Password: req.Password, FullName: req.FullName,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, user, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": toUserDTO(user)})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	user, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// ---- reviews ----

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r)
	if !ok {
		return
	}
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req createReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	review, err := h.Reviews.Create(r.Context(), app.CreateReviewInput{
		UserID: claims.UserID, HotelID: hotelID,
		Rating: req.Rating, Comment: req.Comment,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewDTO(review))
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r)
	if !ok {
		return
	}
	page, err := h.Q.ListReviews(r.Context(), hotelID, pageQuery(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	items := make([]reviewDTO, 0, len(page.Items))
	for _, rv := range page.Items {
		items = append(items, toReviewDTO(rv))
	}
	writeCached(w, r, map[string]any{"items": items, "total": page.Total})
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Reviews.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
