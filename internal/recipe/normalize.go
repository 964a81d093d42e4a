package recipe

import "strings"

// NormalizeTitle canonicalizes a free-text recipe name into the form
// used both as the store lookup key and as the authoritative title in
// generation prompts: whitespace-collapsed, each word title-cased
// (e.g. "apple CAKE" -> "Apple Cake"). It is idempotent.
func NormalizeTitle(raw string) (string, error) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", ErrInvalidInput
	}

	for i, word := range words {
		runes := []rune(word)
		first := strings.ToUpper(string(runes[0]))
		rest := strings.ToLower(string(runes[1:]))
		words[i] = first + rest
	}

	return strings.Join(words, " "), nil
}
