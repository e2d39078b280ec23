package services

import (
	"sync"

	"github.com/pemistahl/lingua-go"
)

var languageDetector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Chinese,
			lingua.Japanese,
			lingua.Korean,
			lingua.Russian,
			lingua.Spanish,
			lingua.French,
			lingua.German,
		).
		Build()
})

const UnknownLanguage = "unknown"

func DetectPostLanguage(content string) string {
	if len(content) == 0 {
		return UnknownLanguage
	}
	if language, ok := languageDetector().DetectLanguageOf(content); ok {
		return language.IsoCode639_1().String()
	}
	return UnknownLanguage
}
