package handler

import (
	"net/http"
	"time"

	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/calendar"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	"go.uber.org/zap"
)

type CalendarHandler struct {
	service ports.BirthdayService
	errs    errorWriter
	now     func() time.Time
}

func NewCalendarHandler(service ports.BirthdayService, tr *Translator, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		errs:    errorWriter{tr: tr, logger: logger},
		now:     time.Now,
	}
}

// Feed serves every birthday as an iCalendar subscription.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	birthdays, err := h.service.ListAll(r.Context())
	if err != nil {
		h.errs.write(w, r, err, MsgInternal)
		return
	}

	data, err := calendar.Build(birthdays, h.now())
	if err != nil {
		h.errs.write(w, r, err, MsgInternal)
		return
	}

	w.Header().Set("Content-Type", calendar.MimeType)
	w.Header().Set("Content-Disposition", `inline; filename="birthdays.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
