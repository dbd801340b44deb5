package localization

import (
	"strings"

	i18n "github.com/goliatone/go-i18n"
)

// contextSeparator joins a disambiguation context to a message key, the
// same way gettext stores msgctxt.
const contextSeparator = "\x04"

// Functions are translation helpers bound to one locale. A nil *Functions,
// or one without a translator, returns the untranslated text.
type Functions struct {
	locale     string
	translator i18n.Translator
	rtl        bool
	version    uint64
}

// Locale returns the bound locale.
func (f *Functions) Locale() string {
	if f == nil {
		return ""
	}
	return f.locale
}

// Translate looks up key, falling back to key itself.
func (f *Functions) Translate(key string, args ...any) string {
	if text, ok := f.lookup(key, args...); ok {
		return text
	}
	return key
}

// TranslateContext looks up key disambiguated by context.
func (f *Functions) TranslateContext(key, context string, args ...any) string {
	if text, ok := f.lookup(ContextKey(context, key), args...); ok {
		return text
	}
	return key
}

// TranslatePlural picks the plural form of single for count. Without a
// translation, single is used when count is 1 and plural otherwise.
func (f *Functions) TranslatePlural(single, plural string, count int, args ...any) string {
	if text, ok := f.lookup(single, append([]any{i18n.WithCount(count)}, args...)...); ok {
		return text
	}
	if count == 1 {
		return single
	}
	return plural
}

// TranslatePluralContext is TranslatePlural with a disambiguation context.
func (f *Functions) TranslatePluralContext(single, plural string, count int, context string, args ...any) string {
	if text, ok := f.lookup(ContextKey(context, single), append([]any{i18n.WithCount(count)}, args...)...); ok {
		return text
	}
	if count == 1 {
		return single
	}
	return plural
}

// IsRTL reports whether the bound locale is written right to left.
func (f *Functions) IsRTL() bool {
	return f != nil && f.rtl
}

// HasTranslation reports whether key (with an optional context) has a
// translation in the bound locale.
func (f *Functions) HasTranslation(key, context string) bool {
	if context != "" {
		key = ContextKey(context, key)
	}
	_, ok := f.lookup(key)
	return ok
}

func (f *Functions) lookup(key string, args ...any) (string, bool) {
	if f == nil || f.translator == nil {
		return "", false
	}
	text, err := f.translator.Translate(f.locale, key, args...)
	if err != nil {
		return "", false
	}
	return text, true
}

// ContextKey builds the catalog key for key under context.
func ContextKey(context, key string) string {
	if context == "" {
		return key
	}
	return context + contextSeparator + key
}

func baseLanguage(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		return locale[:i]
	}
	return locale
}
