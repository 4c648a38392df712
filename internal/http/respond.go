package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spotshare/spotshare/internal/feed"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

// respondServiceError maps the feed error taxonomy onto HTTP statuses.
// PartialCascadeError is deliberately not handled here: the delete handler
// treats it as a qualified success.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var (
		notFound     *feed.NotFoundError
		validation   *feed.ValidationError
		unauthorized *feed.UnauthorizedError
		storeErr     *feed.StoreError
	)
	switch {
	case errors.As(err, &notFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.As(err, &validation):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", validation.Error())
	case errors.As(err, &unauthorized):
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not authorized")
	case errors.As(err, &storeErr):
		s.logger.Printf("store error: %v", storeErr)
		s.respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "Temporary storage failure, please retry")
	default:
		s.logger.Printf("internal error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure")
	}
}
