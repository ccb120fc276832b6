package handler

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs besides the validation reasons, which are looked up by their
// domain.Reason value.
const (
	MsgCreateFailed       = "CreateFailed"
	MsgUpdateFailed       = "UpdateFailed"
	MsgNotFound           = "NotFound"
	MsgUnauthorized       = "Unauthorized"
	MsgInvalidCredentials = "InvalidCredentials"
	MsgStoreUnavailable   = "StoreUnavailable"
	MsgBadRequest         = "BadRequest"
	MsgInternal           = "Internal"
)

// Translator localizes user facing messages from the embedded bundles.
type Translator struct {
	bundle   *i18n.Bundle
	fallback string
	langs    []string
}

// NewTranslator loads every locales/active.<lang>.json file.
func NewTranslator(defaultLang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		langs = append(langs, strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json"))
	}

	if defaultLang == "" {
		defaultLang = language.English.String()
	}
	return &Translator{bundle: bundle, fallback: defaultLang, langs: langs}, nil
}

// Languages lists the loaded locale codes.
func (t *Translator) Languages() []string {
	return t.langs
}

// Localizer picks a language from the request's Accept-Language header.
func (t *Translator) Localizer(r *http.Request) *i18n.Localizer {
	return i18n.NewLocalizer(t.bundle, r.Header.Get("Accept-Language"), t.fallback)
}

// Message translates id, returning id itself when no bundle knows it.
func (t *Translator) Message(loc *i18n.Localizer, id string) string {
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil || msg == "" {
		return id
	}
	return msg
}
