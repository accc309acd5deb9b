// Package locale renders stack labels and calendar summaries in the
// supported languages.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Translator localizes labels for one language. It is safe for concurrent use.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer

	// Lang is the language requested for this translator.
	Lang string

	// Languages lists the locales found in the embedded files.
	Languages []string
}

// New loads the embedded locales and returns a translator for lang.
// Unknown languages fall back to English.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return t.With(lang)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	return t.With(lang)
}

// With returns a translator for another language sharing the same bundle.
func (t *Translator) With(lang string) *Translator {
	if lang == "" || (len(t.Languages) > 0 && !slices.Contains(t.Languages, lang)) {
		lang = config.DefaultLanguage
	}
	return &Translator{
		bundle:    t.bundle,
		localizer: i18n.NewLocalizer(t.bundle, lang),
		Lang:      lang,
		Languages: t.Languages,
	}
}

// Msg translates a key. Missing keys return fallback.
func (t *Translator) Msg(key, fallback string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data}, fallback)
}

// Count translates a plural message for n, zero included.
func (t *Translator) Count(key, fallback string, n int) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: countData(n), PluralCount: n}, fallback)
}

func (t *Translator) localize(cfg *i18n.LocalizeConfig, fallback string) string {
	msg, err := t.localizer.Localize(cfg)
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, cfg.MessageID,
			config.LogKeyError, err,
		)
		return fallback
	}
	return msg
}

// Label returns the localized name of a bucket. Custom labels pass through.
func (t *Translator) Label(b age.Bucket) string {
	switch b.Kind() {
	case age.KindPregnancy:
		return t.Msg(config.TKeyBucketPregnancy, b.String(), nil)
	case age.KindBirthMonth:
		return t.Msg(config.TKeyBucketBirthMonth, b.String(), nil)
	case age.KindMonth:
		return t.Count(config.TKeyBucketMonth, b.String(), b.Value())
	case age.KindYear:
		return t.Count(config.TKeyBucketYear, b.String(), b.Value())
	default:
		return b.String()
	}
}

// AgeText describes an age the way a photo caption would: the pregnancy
// trimester or the weeks left before birth when tracked, the display bucket
// otherwise. It returns an empty string for ages that belong to no bucket.
func (t *Translator) AgeText(p age.Person, a age.ExactAge) string {
	b, ok := age.BucketOf(p, a)
	if !ok {
		return ""
	}
	if a.IsPregnancy {
		switch p.PregnancyTracking {
		case age.TrackingTrimesters:
			return t.Msg(config.TKeyTrimester, fmt.Sprintf(config.FallbackTrimester, a.Trimester), countData(a.Trimester))
		case age.TrackingWeeks:
			return t.Count(config.TKeyPregnancyWeek, fmt.Sprintf(config.FallbackWeek, a.PregnancyWeeks), a.PregnancyWeeks)
		}
	}
	return t.Label(age.Display(b, a, p.BirthMonthsDisplay))
}

// AllPhotos returns the label of the range holding every visible photo.
func (t *Translator) AllPhotos() string {
	return t.Msg(config.TKeyAllPhotos, config.FallbackAllPhotos, nil)
}

// Milestone returns the calendar summary for a person entering bucket b.
func (t *Translator) Milestone(name string, b age.Bucket) string {
	if b.Kind() == age.KindBirthMonth {
		return t.Msg(config.TKeyEvtBirth, fmt.Sprintf(config.FallbackBirth, name), map[string]any{"Name": name})
	}
	label := t.Label(b)
	return t.Msg(config.TKeyEvtMilestone, fmt.Sprintf(config.FallbackMilestone, name, label),
		map[string]any{"Name": name, "Label": label})
}

// CalendarName returns the localized calendar title.
func (t *Translator) CalendarName() string {
	return t.Msg(config.TKeyCalName, config.ICalCalName, nil)
}

func countData(n int) map[string]any {
	return map[string]any{"Count": n}
}
