package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const autoLanguage = "auto"

func isAuto(lang string) bool {
	lang = strings.TrimSpace(lang)
	return lang == "" || strings.EqualFold(lang, autoLanguage)
}

// languageName turns a BCP 47 code into an English name for prompts
// ("ja" -> "Japanese"). Free-form names pass through unchanged.
func languageName(lang string) string {
	if isAuto(lang) {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return lang
}

// languageCode normalises a tag to the base code HTTP translation
// services expect ("pt-BR" -> "pt"); "auto" is kept.
func languageCode(lang string) string {
	if isAuto(lang) {
		return autoLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(lang))
	}
	base, _ := tag.Base()
	return base.String()
}
