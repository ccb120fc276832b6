package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/birthday-admin/pkg/core/query"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/validation"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type BirthdayHandler struct {
	service ports.BirthdayService
	errs    errorWriter
}

func NewBirthdayHandler(service ports.BirthdayService, tr *Translator, logger *zap.Logger) *BirthdayHandler {
	return &BirthdayHandler{
		service: service,
		errs:    errorWriter{tr: tr, logger: logger},
	}
}

// listResponse is one page of the dashboard table.
type listResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// List Birthdays
func (h *BirthdayHandler) List(w http.ResponseWriter, r *http.Request) {
	params := ParseQueryParams(r)

	res, err := h.service.Query(r.Context(), params)
	if err != nil {
		h.errs.write(w, r, err, MsgInternal)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:  res.Items,
		Total: res.Total,
		Page:  params.Page.Number,
		Limit: params.Page.Size,
		Pages: res.Pages(params.Page.Size),
	})
}

// Create Birthday
func (h *BirthdayHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInput(r)
	if err != nil {
		h.errs.badRequest(w, r)
		return
	}

	birthday, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.errs.write(w, r, err, MsgCreateFailed)
		return
	}

	writeJSON(w, http.StatusCreated, birthday)
}

// Update Birthday
func (h *BirthdayHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInput(r)
	if err != nil {
		h.errs.badRequest(w, r)
		return
	}
	input.ID = r.PathValue("id")

	birthday, err := h.service.Update(r.Context(), input)
	if err != nil {
		h.errs.write(w, r, err, MsgUpdateFailed)
		return
	}

	writeJSON(w, http.StatusOK, birthday)
}

// Delete Birthday
func (h *BirthdayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.errs.write(w, r, err, MsgInternal)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

const (
	// maxPage bounds the page number taken from the query string.
	maxPage = 1 << 20
	// maxFormMemory is how much of a multipart body is held in memory.
	maxFormMemory = 1 << 20
)

// ParseQueryParams reads filter, sort and page settings from the URL query.
// Unknown values fall back to the dashboard defaults.
func ParseQueryParams(r *http.Request) query.Params {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	page = min(page, maxPage)
	limit, _ := strconv.Atoi(q.Get("limit"))
	if !query.AllowedPageSize(limit) {
		limit = query.DefaultPageSize
	}

	sort := query.DefaultSort()
	if query.SortField(q.Get("sort")) == query.SortByDate {
		sort.Field = query.SortByDate
	}
	if strings.EqualFold(q.Get("dir"), string(query.SortDesc)) {
		sort.Direction = query.SortDesc
	}

	return query.Params{
		Filter: query.Filter{
			Search:  q.Get("search"),
			Letter:  q.Get("letter"),
			Month:   q.Get("month"),
			Day:     q.Get("day"),
			HasYear: query.ParseTriState(q.Get("year")),
			HasLink: query.ParseTriState(q.Get("link")),
		},
		Sort:   sort,
		Page:   query.Page{Number: page, Size: limit},
		// Pinned so every admin sees the order the store listing uses.
		Locale: language.English,
	}
}

// decodeInput accepts a JSON body or a form submission.
func decodeInput(r *http.Request) (validation.Input, error) {
	var input validation.Input

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return validation.Input{}, err
		}
		return input, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return validation.Input{}, err
		}
	} else if err := r.ParseForm(); err != nil {
		return validation.Input{}, err
	}
	input.ID = r.PostForm.Get(validation.FieldID)
	input.Name = r.PostForm.Get(validation.FieldName)
	input.Date = r.PostForm.Get(validation.FieldDate)
	input.Link = r.PostForm.Get(validation.FieldLink)
	return input, nil
}
