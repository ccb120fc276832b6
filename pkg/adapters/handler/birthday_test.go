package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/query"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/validation"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const testID = "6f1c0b8e-3b7a-4c57-9b8e-0d3c2f1a9e11"

// fakeBirthdays validates like the real service and stores nothing.
type fakeBirthdays struct {
	records   []domain.Birthday
	err       error
	lastQuery query.Params
	deleted   string
}

func (f *fakeBirthdays) ListAll(ctx context.Context) ([]domain.Birthday, error) {
	return f.records, f.err
}

func (f *fakeBirthdays) Query(ctx context.Context, p query.Params) (query.Result, error) {
	f.lastQuery = p
	if f.err != nil {
		return query.Result{}, f.err
	}
	return query.Run(f.records, p), nil
}

func (f *fakeBirthdays) Create(ctx context.Context, in validation.Input) (*domain.Birthday, error) {
	fields, err := validation.ValidateCreate(in)
	if err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Birthday{ID: testID, Name: fields.Name, Date: fields.Date, Link: fields.Link}, nil
}

func (f *fakeBirthdays) Update(ctx context.Context, in validation.Input) (*domain.Birthday, error) {
	id, fields, err := validation.ValidateUpdate(in)
	if err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Birthday{ID: id, Name: fields.Name, Date: fields.Date, Link: fields.Link}, nil
}

func (f *fakeBirthdays) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	return nil
}

func newTestBirthdayHandler(t *testing.T, svc *fakeBirthdays) *BirthdayHandler {
	return NewBirthdayHandler(svc, testTranslator(t), zap.NewNop())
}

func serve(h http.HandlerFunc, req *http.Request, pattern string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestBirthdayHandler_List(t *testing.T) {
	svc := &fakeBirthdays{records: []domain.Birthday{
		{ID: "1", Name: "Zeta", Date: "03-10"},
		{ID: "2", Name: "alpha", Date: "2000-01-05"},
		{ID: "3", Name: "Beta", Date: "1995-03-10"},
	}}
	h := newTestBirthdayHandler(t, svc)

	req := httptest.NewRequest("GET", "/api/v1/birthdays?month=03&sort=date&dir=desc&page=1&limit=20&year=no", nil)
	rr := serve(h.List, req, "GET /api/v1/birthdays")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data  []domain.Birthday `json:"data"`
		Total int               `json:"total"`
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
		Pages int               `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Zeta", body.Data[0].Name)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 20, body.Limit)
	assert.Equal(t, 1, body.Pages)

	assert.Equal(t, query.SortByDate, svc.lastQuery.Sort.Field)
	assert.Equal(t, query.SortDesc, svc.lastQuery.Sort.Direction)
	assert.Equal(t, query.TriNo, svc.lastQuery.Filter.HasYear)
}

func TestParseQueryParams_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/birthdays?page=-3&limit=25&sort=bogus", nil)
	p := ParseQueryParams(req)

	assert.Equal(t, query.Page{Number: 1, Size: query.DefaultPageSize}, p.Page)
	assert.Equal(t, query.DefaultSort(), p.Sort)
	assert.Equal(t, query.TriAll, p.Filter.HasYear)
	assert.Equal(t, query.TriAll, p.Filter.HasLink)
}

func TestParseQueryParams_HugePage(t *testing.T) {
	for _, raw := range []string{"288230376151711745", "99999999999999999999999"} {
		req := httptest.NewRequest("GET", "/api/v1/birthdays?page="+raw+"&limit=50", nil)
		p := ParseQueryParams(req)
		assert.LessOrEqual(t, p.Page.Number, maxPage)
		assert.GreaterOrEqual(t, p.Page.Number, 1)
	}
}

func TestParseQueryParams_SortLocaleIgnoresAcceptLanguage(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/birthdays", nil)
	req.Header.Set("Accept-Language", "sv-SE,ja;q=0.8")

	assert.Equal(t, language.English, ParseQueryParams(req).Locale)
}

func TestBirthdayHandler_List_PageBeyondEnd(t *testing.T) {
	svc := &fakeBirthdays{records: []domain.Birthday{{ID: "1", Name: "Zeta", Date: "03-10"}}}
	h := newTestBirthdayHandler(t, svc)

	req := httptest.NewRequest("GET", "/api/v1/birthdays?page=288230376151711745&limit=50", nil)
	rr := serve(h.List, req, "GET /api/v1/birthdays")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data  []domain.Birthday `json:"data"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Empty(t, body.Data)
	assert.Equal(t, 1, body.Total)
}

func TestBirthdayHandler_List_EmptyDataIsArray(t *testing.T) {
	h := newTestBirthdayHandler(t, &fakeBirthdays{})

	rr := serve(h.List, httptest.NewRequest("GET", "/api/v1/birthdays", nil), "GET /api/v1/birthdays")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"page":1,"limit":10,"pages":0}`, rr.Body.String())
}

func multipartBody(t *testing.T, fields map[string]string) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return buf.String(), mw.FormDataContentType()
}

func TestBirthdayHandler_Create(t *testing.T) {
	multipartPayload, multipartType := multipartBody(t, map[string]string{"name": "Amatsuki", "date": "03-09"})

	tests := []struct {
		name           string
		contentType    string
		body           string
		expectedStatus int
		expectedErrors map[string][]string
	}{
		{
			name:           "JSON",
			contentType:    "application/json",
			body:           `{"name":"Amatsuki","date":"03-09","link":"https://x.com/amatsuki"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Form",
			contentType:    "application/x-www-form-urlencoded",
			body:           url.Values{"name": {"Amatsuki"}, "date": {"1995-03-09"}}.Encode(),
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Multipart form",
			contentType:    multipartType,
			body:           multipartPayload,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid fields",
			contentType:    "application/json",
			body:           `{"name":" ","date":"2023-02-29","link":"not a url"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedErrors: map[string][]string{
				"name": {"Name is required."},
				"date": {"Please enter a valid calendar date (e.g., month 1-12, day 1-31)."},
				"link": {"Please enter a valid URL."},
			},
		},
		{
			name:           "Malformed JSON",
			contentType:    "application/json",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestBirthdayHandler(t, &fakeBirthdays{})
			req := httptest.NewRequest("POST", "/api/v1/birthdays", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			rr := serve(h.Create, req, "POST /api/v1/birthdays")

			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedErrors != nil {
				var body errorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, "Failed to create birthday. Please check the fields.", body.Message)
				assert.Equal(t, tt.expectedErrors, body.Errors)
			}
			if tt.expectedStatus == http.StatusCreated {
				var b domain.Birthday
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
				assert.Equal(t, "Amatsuki", b.Name)
				assert.NotContains(t, b.Link, "x.com")
			}
		})
	}
}

func TestBirthdayHandler_Create_Localized(t *testing.T) {
	h := newTestBirthdayHandler(t, &fakeBirthdays{})
	req := httptest.NewRequest("POST", "/api/v1/birthdays", strings.NewReader(`{"name":"","date":"03-09"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "ja,en;q=0.5")

	rr := serve(h.Create, req, "POST /api/v1/birthdays")

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"名前は必須です。"}, body.Errors["name"])
}

func TestBirthdayHandler_Update(t *testing.T) {
	h := newTestBirthdayHandler(t, &fakeBirthdays{})

	req := httptest.NewRequest("PUT", "/api/v1/birthdays/"+testID, strings.NewReader(`{"name":"New","date":"02-29"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := serve(h.Update, req, "PUT /api/v1/birthdays/{id}")
	require.Equal(t, http.StatusOK, rr.Code)

	var b domain.Birthday
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Equal(t, testID, b.ID)

	// The path id wins over any id in the body.
	req = httptest.NewRequest("PUT", "/api/v1/birthdays/nope", strings.NewReader(`{"id":"`+testID+`","name":"New","date":"02-29"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = serve(h.Update, req, "PUT /api/v1/birthdays/{id}")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Missing or invalid ID for update.")
}

func TestBirthdayHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"store unavailable", domain.Unavailable("update birthday", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestBirthdayHandler(t, &fakeBirthdays{err: tt.err})

			req := httptest.NewRequest("PUT", "/api/v1/birthdays/"+testID, strings.NewReader(`{"name":"x","date":"01-01"}`))
			req.Header.Set("Content-Type", "application/json")
			rr := serve(h.Update, req, "PUT /api/v1/birthdays/{id}")
			assert.Equal(t, tt.expectedStatus, rr.Code)

			rr = serve(h.Delete, httptest.NewRequest("DELETE", "/api/v1/birthdays/"+testID, nil), "DELETE /api/v1/birthdays/{id}")
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestBirthdayHandler_Delete(t *testing.T) {
	svc := &fakeBirthdays{}
	h := newTestBirthdayHandler(t, svc)

	rr := serve(h.Delete, httptest.NewRequest("DELETE", "/api/v1/birthdays/"+testID, nil), "DELETE /api/v1/birthdays/{id}")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, testID, svc.deleted)
}
