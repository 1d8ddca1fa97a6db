package i18n

import (
	"embed"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/active.*.toml
var builtin embed.FS

// DefaultLanguage is the language of the sites the form ships on.
const DefaultLanguage = "he"

// Kind keys a user-visible message.
type Kind string

const (
	RequiredField    Kind = "required_field"
	InvalidPhone     Kind = "invalid_phone"
	InvalidEmail     Kind = "invalid_email"
	ConsentRequired  Kind = "consent_required"
	TooManyFiles     Kind = "too_many_files"
	UnsupportedType  Kind = "unsupported_type"
	FileTooLarge     Kind = "file_too_large"
	SubmitSuccess    Kind = "submit_success"
	SubmitFailure    Kind = "submit_failure"
	TechnicalError   Kind = "technical_error"
	RemoveAttachment Kind = "remove_attachment"
)

// Kinds lists every message the form can show.
var Kinds = []Kind{
	RequiredField, InvalidPhone, InvalidEmail, ConsentRequired,
	TooManyFiles, UnsupportedType, FileTooLarge,
	SubmitSuccess, SubmitFailure, TechnicalError, RemoveAttachment,
}

// Messages is the lookup components use; they never hold literal display text.
type Messages interface {
	Text(kind Kind, data map[string]interface{}) string
}

type Translations struct {
	bundle   *i18n.Bundle
	localize *i18n.Localizer
	lang     string
}

// NewTranslations loads the embedded tables plus any active.<lang>.toml files
// found in localesDir (which may be empty).
func NewTranslations(lang, localesDir string) (*Translations, error) {
	if lang == "" {
		return nil, fmt.Errorf("language is required")
	}

	bundle := i18n.NewBundle(language.Hebrew)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := builtin.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded locales: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(builtin, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("error loading embedded locale %s: %w", e.Name(), err)
		}
	}

	if localesDir != "" {
		files, err := filepath.Glob(filepath.Join(localesDir, "active.*.toml"))
		if err != nil {
			return nil, fmt.Errorf("error reading locales: %w", err)
		}
		for _, file := range files {
			if _, err := bundle.LoadMessageFile(file); err != nil {
				return nil, fmt.Errorf("error loading locale file %s: %w", file, err)
			}
		}
	}

	t := &Translations{bundle: bundle}
	if err := t.SetLanguage(lang); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == lang {
			t.localize = i18n.NewLocalizer(t.bundle, lang, DefaultLanguage)
			t.lang = lang
			return nil
		}
	}
	return fmt.Errorf("language '%s' not supported", lang)
}

func (t *Translations) Language() string { return t.lang }

func (t *Translations) GetMessage(messageID string, count int, templateData map[string]interface{}) string {
	cfg := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if count > 0 {
		cfg.PluralCount = count
	}
	// Tables that only define "other" still localize when a plural form is
	// missing; go-i18n reports that as an error alongside the fallback text.
	localized, err := t.localize.Localize(cfg)
	if err != nil && localized == "" {
		return "Translation missing: " + messageID
	}
	return localized
}

// Text renders kind. A "Max" entry in data doubles as the plural count.
func (t *Translations) Text(kind Kind, data map[string]interface{}) string {
	count := 0
	if v, ok := data["Max"].(int); ok {
		count = v
	}
	return t.GetMessage(string(kind), count, data)
}
