// Package color derives stable avatar colors and initials for forum members.
package color

import (
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// palette is a set of soft tones that keep white initials readable.
var palette = []string{
	"#E57373", "#F06292", "#BA68C8", "#9575CD",
	"#7986CB", "#64B5F6", "#4FC3F7", "#4DD0E1",
	"#4DB6AC", "#81C784", "#AED581", "#FFB74D",
	"#FF8A65", "#A1887F", "#90A4AE", "#F48FB1",
}

// ForUser picks a palette color from the user ID. The same ID always maps to
// the same color, so clients can render avatars without a stored preference.
func ForUser(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return palette[h.Sum32()%uint32(len(palette))]
}

// Initials returns up to two uppercase letters from a display name.
func Initials(displayName string) string {
	var out []rune
	for word := range strings.FieldsSeq(displayName) {
		r, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
