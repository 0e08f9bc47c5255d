package hadith

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var letterForms = strings.NewReplacer(
	"ٱ", "ا", // alef wasla
	"ى", "ي", // alef maksura
	"ة", "ه", // ta marbuta
	"ـ", "", // tatweel
)

// Normalize folds s for searching: Arabic diacritics and tatweel are dropped,
// hamza carriers, alef and ya forms are unified, ta marbuta becomes ha and
// Latin letters are lowered. Runs of whitespace collapse to one space.
func Normalize(s string) string {
	// decomposing first turns أ إ آ ؤ ئ into their base letter plus a combining hamza or madda.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = letterForms.Replace(folded)
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// searchText is the normalized text a hadith is searched by.
func searchText(h Hadith) string {
	return Normalize(strings.Join([]string{h.ArabicText, h.Translation, h.Narrator}, " "))
}
