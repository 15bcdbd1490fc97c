// Package langdetect guesses the language of a collected article when the
// provider supplies none. The pipeline feeds it title plus description, so
// samples are short but usually unambiguous.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minSampleLetters keeps the detector away from samples too short to carry a
// signal; a bare ticker symbol or a two-word headline stays undetected.
const minSampleLetters = 6

var (
	buildOnce sync.Once
	shared    lingua.LanguageDetector
)

// DetectISO6391 returns the detected language as a two-letter ISO 639-1 code,
// or "" when the sample is too short or the detector has no confident answer.
func DetectISO6391(sample string) string {
	trimmed := strings.TrimSpace(sample)
	if trimmed == "" {
		return ""
	}

	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minSampleLetters {
		return ""
	}

	detected, confident := sharedDetector().DetectLanguageOf(trimmed)
	if !confident {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// sharedDetector builds the detector on first use. Construction loads every
// language model, so collectors that always ship a language never pay for it.
func sharedDetector() lingua.LanguageDetector {
	buildOnce.Do(func() {
		shared = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return shared
}
