package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/woozymasta/worldtile/internal/metrics"
	"github.com/woozymasta/worldtile/internal/parcel"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
)

// maxBodySize bounds parcel request bodies.
const maxBodySize = 1 << 16

type draftResponse struct {
	ID          string    `json:"id"`
	Ring        orb.Ring  `json:"ring"`
	Center      orb.Point `json:"center"`
	AreaM2      float64   `json:"area_m2"`
	Acres       float64   `json:"acres"`
	Purchasable bool      `json:"purchasable"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HandleCreateParcel starts a draft around {"center":[lon,lat]}.
func (s *ServerContext) HandleCreateParcel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Center *orb.Point `json:"center"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Center == nil {
		writeError(w, http.StatusBadRequest, "center is required")
		return
	}

	// purchasability needs the overlay; do not keep a draft the client never saw
	if _, ok := s.mustOverlay(w); !ok {
		return
	}

	d := s.Drafts.Create(*req.Center)
	metrics.DraftsActive.Set(float64(s.Drafts.Len()))

	s.writeDraft(w, http.StatusCreated, d, nil)
}

// HandleGetParcel returns a draft.
func (s *ServerContext) HandleGetParcel(w http.ResponseWriter, r *http.Request) {
	d, err := s.Drafts.Get(chi.URLParam(r, "id"))
	s.writeDraft(w, http.StatusOK, d, err)
}

// HandleDeleteParcel discards a draft.
func (s *ServerContext) HandleDeleteParcel(w http.ResponseWriter, r *http.Request) {
	if err := s.Drafts.Discard(chi.URLParam(r, "id")); err != nil {
		writeParcelError(w, err)
		return
	}

	metrics.DraftsActive.Set(float64(s.Drafts.Len()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleMoveCorner replaces corner {index} with {"position":[lon,lat]}.
func (s *ServerContext) HandleMoveCorner(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "corner index must be an integer")
		return
	}

	var req struct {
		Position *orb.Point `json:"position"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Position == nil {
		writeError(w, http.StatusBadRequest, "position is required")
		return
	}

	d, err := s.Drafts.MoveCorner(chi.URLParam(r, "id"), index, *req.Position)
	s.writeDraft(w, http.StatusOK, d, err)
}

// HandleTranslateParcel shifts a draft by {"dlon":..,"dlat":..} degrees.
func (s *ServerContext) HandleTranslateParcel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeltaLon float64 `json:"dlon"`
		DeltaLat float64 `json:"dlat"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := s.Drafts.Translate(chi.URLParam(r, "id"), req.DeltaLon, req.DeltaLat)
	s.writeDraft(w, http.StatusOK, d, err)
}

// HandleRotateParcel turns a draft by {"angle":..} degrees, counter-clockwise.
func (s *ServerContext) HandleRotateParcel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Angle float64 `json:"angle"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := s.Drafts.Rotate(chi.URLParam(r, "id"), req.Angle)
	s.writeDraft(w, http.StatusOK, d, err)
}

func (s *ServerContext) writeDraft(w http.ResponseWriter, status int, d parcel.Draft, err error) {
	if err != nil {
		writeParcelError(w, err)
		return
	}

	center, err := parcel.Center(d.Ring)
	if err != nil {
		writeParcelError(w, err)
		return
	}

	o, ok := s.mustOverlay(w)
	if !ok {
		return
	}

	writeJSON(w, status, draftResponse{
		ID:          d.ID,
		Ring:        d.Ring,
		Center:      center,
		AreaM2:      parcel.Area(d.Ring),
		Acres:       parcel.Acres(d.Ring),
		Purchasable: o.collection.Covers(d.Ring),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	})
}

func writeParcelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parcel.ErrDraftNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, parcel.ErrCornerIndex), errors.Is(err, parcel.ErrTooFewPositions):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
