package hittrax

import "unicode/utf8"

// DecodeText turns uploaded bytes into a string. Valid UTF-8 passes
// through untouched; anything else is read as Latin-1, which maps every
// byte to a code point and therefore never fails.
func DecodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}
