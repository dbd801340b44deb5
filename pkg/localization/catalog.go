package localization

import (
	i18n "github.com/goliatone/go-i18n"
)

// NewCatalog builds a translation catalog from key to template entries.
func NewCatalog(locale string, entries map[string]string) *i18n.TranslationCatalog {
	catalog := &i18n.TranslationCatalog{
		Locale:   i18n.Locale{Code: locale},
		Messages: make(map[string]i18n.Message, len(entries)),
	}
	for key, template := range entries {
		msg := i18n.Message{}
		msg.SetContent(template)
		catalog.Messages[key] = msg
	}
	return catalog
}

// NewTranslator builds a translator over in-memory translations. An empty
// catalog is created for defaultLocale when translations has none.
func NewTranslator(defaultLocale string, translations i18n.Translations, fallbacks i18n.FallbackResolver) (i18n.Translator, error) {
	if translations == nil {
		translations = i18n.Translations{}
	}
	if _, ok := translations[defaultLocale]; !ok {
		translations[defaultLocale] = NewCatalog(defaultLocale, nil)
	}
	store := i18n.NewStaticStore(translations)
	if fallbacks != nil {
		return i18n.NewSimpleTranslator(store,
			i18n.WithTranslatorDefaultLocale(defaultLocale),
			i18n.WithTranslatorFallbackResolver(fallbacks),
		)
	}
	return i18n.NewSimpleTranslator(store, i18n.WithTranslatorDefaultLocale(defaultLocale))
}

// DefaultTranslations carries the block type titles shipped with the module.
func DefaultTranslations() i18n.Translations {
	return i18n.Translations{
		"en": NewCatalog("en", nil),
		"es": NewCatalog("es", map[string]string{
			"Paragraph":     "Párrafo",
			"Heading":       "Encabezado",
			"Custom HTML":   "HTML personalizado",
			"Classic":       "Clásico",
			"Page Break":    "Salto de página",
			"Group":         "Grupo",
			"Legacy Widget": "Widget heredado",
		}),
	}
}
