package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"lightbnb/internal/app"
	"lightbnb/internal/domain"
	"lightbnb/internal/storage/sqlerr"
)

type Handlers struct {
	Q   *app.QueryService
	C   *app.CommandService
	Log zerolog.Logger
}

var validate = validator.New()

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/users", func(r chi.Router) {
		r.Get("/", h.getUserByEmail)
		r.Post("/", h.createUser)
		r.Get("/{id}", h.getUser)
		r.Get("/{id}/reservations", h.listReservations)
	})
	s.mux.Route("/v1/properties", func(r chi.Router) {
		r.Get("/", h.searchProperties)
		r.Post("/", h.createProperty)
	})
}

func (h *Handlers) writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		h.Log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeStoreError maps a storage error onto a status code by its kind.
func (h *Handlers) writeStoreError(w http.ResponseWriter, err error) {
	kind := sqlerr.Classify(err)
	switch {
	case kind == sqlerr.KindUniqueViolation:
		h.writeProblem(w, http.StatusConflict, "Conflict", constraintDetail(kind, err))
	case kind.Constraint():
		h.writeProblem(w, http.StatusBadRequest, "Constraint violation", constraintDetail(kind, err))
	case kind == sqlerr.KindConnectivity:
		h.Log.Error().Err(err).Msg("storage unavailable")
		h.writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "storage unavailable")
	default:
		h.Log.Error().Err(err).Str("kind", kind.String()).Msg("storage error")
		h.writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// constraintDetail names the violated constraint when the driver reports one.
func constraintDetail(kind sqlerr.Kind, err error) string {
	if c := sqlerr.Constraint(err); c != "" {
		return kind.String() + ": " + c
	}
	return kind.String()
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

// writeCached writes v with a weak ETag and honours If-None-Match.
func (h *Handlers) writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		h.Log.Error().Err(err).Msg("marshal response failed")
		h.writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.Log.Error().Err(err).Msg("write response body failed")
	}
}

func (h *Handlers) writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error().Err(err).Msg("write response body failed")
	}
}

// decodeBody reads one JSON object and validates it.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// queryLimit returns 0 when the parameter is absent so services apply their default.
func queryLimit(r *http.Request) (int, error) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return 0, nil
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > 200 {
		return 0, errors.New("limit must be an integer between 1 and 200")
	}
	return l, nil
}

/********** users **********/

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	u, err := h.Q.UserByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if u == nil {
		h.writeProblem(w, http.StatusNotFound, "Not Found", "user not found")
		return
	}
	h.writeCached(w, r, u)
}

func (h *Handlers) getUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.writeProblem(w, http.StatusBadRequest, "Missing email", "email query parameter is required")
		return
	}
	u, err := h.Q.UserByEmail(r.Context(), email)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if u == nil {
		h.writeProblem(w, http.StatusNotFound, "Not Found", "user not found")
		return
	}
	h.writeCached(w, r, u)
}

func (h *Handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	u, err := h.C.AddUser(r.Context(), domain.User{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeCreated(w, u)
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid limit", err.Error())
		return
	}
	out, err := h.Q.ReservationsForGuest(r.Context(), id, limit)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if out == nil {
		out = []domain.GuestReservation{}
	}
	h.writeCached(w, r, out)
}

/********** properties **********/

// createPropertyRequest takes cost_per_night in cents, as stored.
type createPropertyRequest struct {
	OwnerID           int64  `json:"owner_id" validate:"required,gt=0"`
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description"`
	ThumbnailPhotoURL string `json:"thumbnail_photo_url" validate:"required"`
	CoverPhotoURL     string `json:"cover_photo_url" validate:"required"`
	CostPerNight      int64  `json:"cost_per_night" validate:"gte=0"`
	Street            string `json:"street" validate:"required"`
	City              string `json:"city" validate:"required"`
	Province          string `json:"province" validate:"required"`
	PostCode          string `json:"post_code" validate:"required"`
	Country           string `json:"country" validate:"required"`
	ParkingSpaces     int    `json:"parking_spaces" validate:"gte=0"`
	NumberOfBathrooms int    `json:"number_of_bathrooms" validate:"gte=0"`
	NumberOfBedrooms  int    `json:"number_of_bedrooms" validate:"gte=0"`
}

func (req createPropertyRequest) property() domain.Property {
	return domain.Property{
		Title:             req.Title,
		Description:       req.Description,
		ThumbnailPhotoURL: req.ThumbnailPhotoURL,
		CoverPhotoURL:     req.CoverPhotoURL,
		CostPerNight:      req.CostPerNight,
		Street:            req.Street,
		City:              req.City,
		Province:          req.Province,
		PostCode:          req.PostCode,
		Country:           req.Country,
		ParkingSpaces:     req.ParkingSpaces,
		NumberOfBathrooms: req.NumberOfBathrooms,
		NumberOfBedrooms:  req.NumberOfBedrooms,
		OwnerID:           req.OwnerID,
	}
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var req createPropertyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	p, err := h.C.AddProperty(r.Context(), req.property())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeCreated(w, p)
}

// parseSearch reads the search filters. A price bound without its partner is
// dropped rather than rejected.
func parseSearch(r *http.Request) (domain.PropertySearch, error) {
	q := r.URL.Query()
	s := domain.PropertySearch{City: q.Get("city")}

	var lo, hi *decimal.Decimal
	for name, dst := range map[string]**decimal.Decimal{
		"minimum_price_per_night": &lo,
		"maximum_price_per_night": &hi,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return domain.PropertySearch{}, errors.New(name + " must be a number")
		}
		if _, ok := domain.ToCents(d); !ok {
			return domain.PropertySearch{}, errors.New(name + " is out of range")
		}
		*dst = &d
	}
	s.Price = domain.NewPriceRange(lo, hi)

	if v := q.Get("minimum_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.PropertySearch{}, errors.New("minimum_rating must be a finite number")
		}
		s.MinimumRating = &f
	}
	return s, nil
}

func (h *Handlers) searchProperties(w http.ResponseWriter, r *http.Request) {
	s, err := parseSearch(r)
	if err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid limit", err.Error())
		return
	}
	out, err := h.Q.SearchProperties(r.Context(), s, limit)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if out == nil {
		out = []domain.PropertyListing{}
	}
	h.writeCached(w, r, out)
}
