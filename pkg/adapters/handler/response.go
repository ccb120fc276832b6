package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorWriter maps error kinds onto status codes and localized bodies.
type errorWriter struct {
	tr     *Translator
	logger *zap.Logger
}

// write reports err. failedID names the summary message used for validation failures.
func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error, failedID string) {
	loc := e.tr.Localizer(r)

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: e.tr.Message(loc, failedID),
			Errors:  e.fieldMessages(loc, verr),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: e.tr.Message(loc, MsgNotFound)})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: e.tr.Message(loc, MsgUnauthorized)})
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: e.tr.Message(loc, MsgStoreUnavailable)})
	default:
		e.logger.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: e.tr.Message(loc, MsgInternal)})
	}
}

func (e errorWriter) badRequest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: e.tr.Message(e.tr.Localizer(r), MsgBadRequest)})
}

// fieldMessages translates each reason, keeping the validator's own text
// when no bundle has one.
func (e errorWriter) fieldMessages(loc *i18n.Localizer, verr *domain.ValidationError) map[string][]string {
	out := make(map[string][]string, len(verr.Errors))
	for _, fe := range verr.Errors {
		msg := e.tr.Message(loc, string(fe.Reason))
		if msg == string(fe.Reason) {
			msg = fe.Message
		}
		out[fe.Field] = append(out[fe.Field], msg)
	}
	return out
}
