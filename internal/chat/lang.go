package chat

// Lang tags a single turn with its reply language. Detection is per turn,
// not per conversation, so a user can switch languages mid-session.
type Lang string

const (
	LangEnglish Lang = "en"
	LangArabic  Lang = "ar"
)

// DetectLang returns LangArabic when the text contains at least one rune in
// the Arabic Unicode block, LangEnglish otherwise.
func DetectLang(text string) Lang {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return LangArabic
		}
	}
	return LangEnglish
}
