package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"discover-server/api/discovery"
	"discover-server/models"
	services "discover-server/service"
)

const (
	LAT_QUERY_ARG      = "lat"
	LONG_QUERY_ARG     = "long"
	EXPANDED_QUERY_ARG = "expanded"
	ESTABLISHMENT_VAR  = "id"

	MAX_REVIEW_UPLOAD_BYTES = 10 << 20
)

type DetailsProvider interface {
	GetDetails(ctx context.Context, id string, lat, lon float64, expanded bool) (*services.DetailsView, error)
}

type ReviewSubmitter interface {
	Submit(ctx context.Context, sub models.ReviewSubmission) (*models.ReviewRecord, error)
}

type EstablishmentHandler struct {
	details    DetailsProvider
	reviews    ReviewSubmitter
	originLat  float64
	originLong float64
}

// NewEstablishmentHandler answers for requests without lat/long as if the user
// stood at the configured origin.
func NewEstablishmentHandler(details DetailsProvider, reviews ReviewSubmitter, originLat, originLong float64) *EstablishmentHandler {
	return &EstablishmentHandler{details: details, reviews: reviews, originLat: originLat, originLong: originLong}
}

// GetEstablishment handles GET /v1/establishments/{id}
// expects ?lat={latitude(float)}&long={longitude(float)}&expanded={bool}, all optional
func (h *EstablishmentHandler) GetEstablishment(w http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	lat, err := optionalFloat64(vals, LAT_QUERY_ARG, h.originLat)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid argument "+LAT_QUERY_ARG)
		return
	}
	lon, err := optionalFloat64(vals, LONG_QUERY_ARG, h.originLong)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid argument "+LONG_QUERY_ARG)
		return
	}
	expanded := false
	if v := vals.Get(EXPANDED_QUERY_ARG); v != "" {
		expanded, _ = strconv.ParseBool(v)
	}

	view, err := h.details.GetDetails(r.Context(), mux.Vars(r)[ESTABLISHMENT_VAR], lat, lon, expanded)
	if err != nil {
		h.writeEstablishmentError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

// PostReview handles POST /v1/establishments/{id}/reviews with form fields
// rating, comment and an optional image file.
func (h *EstablishmentHandler) PostReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MAX_REVIEW_UPLOAD_BYTES)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(MAX_REVIEW_UPLOAD_BYTES)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form")
		return
	}

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid argument rating")
		return
	}
	sub := models.ReviewSubmission{
		EstablishmentID: mux.Vars(r)[ESTABLISHMENT_VAR],
		Rating:          rating,
		Comment:         r.FormValue("comment"),
	}

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			writeError(w, http.StatusBadRequest, "Invalid image")
			return
		default:
			defer file.Close()
			sub.Image = &models.ReviewImage{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		}
	}

	record, err := h.reviews.Submit(r.Context(), sub)
	if err != nil {
		h.writeEstablishmentError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, record)
}

func (h *EstablishmentHandler) writeEstablishmentError(w http.ResponseWriter, err error) {
	var searchErr *discovery.SearchError
	switch {
	case errors.Is(err, discovery.ErrEstablishmentNotFound):
		writeError(w, http.StatusNotFound, "Establishment not found")
	case errors.Is(err, services.ErrInvalidReview):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &searchErr):
		log.Println("Backend error:", err)
		writeError(w, http.StatusBadGateway, searchErr.Message)
	default:
		log.Println("Error handling establishment request:", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
