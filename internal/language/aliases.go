package language

// iso639Aliases maps three-letter codes and English language names, as some
// providers emit them, to the two-letter codes the rest of the system uses.
var iso639Aliases = map[string]string{
	"eng": "en", "english": "en",
	"spa": "es", "spanish": "es",
	"deu": "de", "ger": "de", "german": "de",
	"fra": "fr", "fre": "fr", "french": "fr",
	"zho": "zh", "chi": "zh", "chinese": "zh",
	"por": "pt", "portuguese": "pt",
	"rus": "ru", "russian": "ru",
	"jpn": "ja", "japanese": "ja",
	"kor": "ko", "korean": "ko",
	"ita": "it", "italian": "it",
	"ara": "ar", "arabic": "ar",
	"hin": "hi", "hindi": "hi",
	"nld": "nl", "dut": "nl", "dutch": "nl",
	"tur": "tr", "turkish": "tr",
	"pol": "pl", "polish": "pl",
	"swe": "sv", "swedish": "sv",
	"ukr": "uk", "ukrainian": "uk",
}

// ResolveCode normalizes a provider language value to a two-letter code. It
// accepts BCP-47 style tags, ISO-639-2/3 codes, and English language names.
// Unknown values fall through unchanged after tag normalization.
func ResolveCode(raw string) string {
	code := NormalizeCode(raw)
	if code == "" {
		return ""
	}
	if alias, exists := iso639Aliases[code]; exists {
		return alias
	}
	return code
}
