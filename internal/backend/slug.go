package backend

import "strings"

var translitMap = map[rune]string{
	'а': "a",
	'б': "b",
	'в': "v",
	'г': "g",
	'д': "d",
	'е': "e",
	'ё': "e",
	'ж': "zh",
	'з': "z",
	'и': "i",
	'й': "y",
	'к': "k",
	'л': "l",
	'м': "m",
	'н': "n",
	'о': "o",
	'п': "p",
	'р': "r",
	'с': "s",
	'т': "t",
	'у': "u",
	'ф': "f",
	'х': "h",
	'ц': "ts",
	'ч': "ch",
	'ш': "sh",
	'щ': "shch",
	'ы': "y",
	'э': "e",
	'ю': "yu",
	'я': "ya",
	'ъ': "",
	'ь': "",
}

func translit(value string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(value) {
		if mapped, ok := translitMap[ch]; ok {
			b.WriteString(mapped)
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// SlugifyTitle derives a URL-safe slug from a post title: Cyrillic is
// transliterated, anything outside [a-z0-9] collapses into single dashes.
// A title with no transliterable characters yields "".
func SlugifyTitle(title string) string {
	if title == "" {
		return ""
	}

	var b strings.Builder
	prevDash := false
	for _, ch := range translit(title) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
			prevDash = false
		} else if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
