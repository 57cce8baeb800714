package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

const maxBodyBytes = 1_048_576

type Handlers struct {
	Q        *app.QueryService
	Ingest   *app.IngestionService
	Moderate *app.ModerationService
	Env      string
	Version  string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// MountHandlers registers the review routes at /reviews and, when apiPrefix
// is non-empty, again under {apiPrefix}/reviews.
func (s *Server) MountHandlers(h *Handlers, apiPrefix string) {
	s.mux.Get("/", h.root)
	s.mux.Get("/health", h.health)
	s.mux.Get("/healthz", h.health)
	s.mux.Route("/reviews", h.reviewRoutes)
	if apiPrefix != "" {
		s.mux.Route(apiPrefix+"/reviews", h.reviewRoutes)
	}
}

func (h *Handlers) reviewRoutes(r chi.Router) {
	r.Get("/", h.listReviews)
	r.Get("/hostaway", h.hostawayReviews)
	r.Get("/stats/dashboard", h.dashboard)
	r.Post("/sync", h.sync)
	r.Patch("/{externalID}", h.updateReview)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain sentinels onto problem responses. Unknown errors
// are logged and reported as 500 without leaking internals.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
	case errors.Is(err, domain.ErrInvalidFilter):
		writeProblem(w, http.StatusBadRequest, "Invalid Query", err.Error())
	case errors.Is(err, domain.ErrMalformedPayload):
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "review source returned a malformed payload")
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Source Unavailable", "review source is unreachable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
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

// decodeJSON reads a single JSON object of at most maxBodyBytes and rejects unknown keys.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		default:
			return err
		}
	}
	if dec.More() {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Flex Living Reviews API",
		"version": h.Version,
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "environment": h.Env})
}

func (h *Handlers) hostawayReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Ingest.FetchNormalized(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewList(reviews))
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	reviews, err := h.Q.ListReviews(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewList(reviews))
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "externalID")
	var u domain.FlagsUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.Moderate.UpdateFlags(r.Context(), id, u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Review updated successfully",
	})
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Q.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(newDashboard(ds))
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard body")
	}
}

func (h *Handlers) sync(w http.ResponseWriter, r *http.Request) {
	res, err := h.Ingest.Sync(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"message":      fmt.Sprintf("Synced %d new reviews from Hostaway", res.Inserted),
		"total_synced": res.Inserted,
	})
}

// parseListFilter checks syntax; range checks happen in the query service.
func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()
	var f domain.ListFilter

	if v := strings.TrimSpace(q.Get("property_id")); v != "" {
		f.PropertyID = &v
	}
	if v := strings.TrimSpace(q.Get("channel")); v != "" {
		f.Channel = &v
	}
	if v := q.Get("min_rating"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("min_rating must be a number")
		}
		f.MinRating = &n
	}
	if v := q.Get("is_approved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("is_approved must be true or false")
		}
		f.IsApproved = &b
	}
	f.Limit = domain.DefaultListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		// 0 would silently mean the default further down
		if err != nil || n == 0 {
			return f, fmt.Errorf("limit must be an integer between 1 and %d", domain.MaxListLimit)
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("offset must be a non-negative integer")
		}
		f.Offset = n
	}
	return f, nil
}
