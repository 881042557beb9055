// Package normalize rewrites ad-hoc math notation into the ASCII syntax
// accepted by the parse package.
package normalize

import "strings"

var glyphs = strings.NewReplacer(
	"^", "**",
	"π", "pi",
	"×", "*",
	"·", "*",
	"÷", "/",
	"−", "-",
	"²", "**2",
	"³", "**3",
)

// Normalize performs literal notation substitutions. It never fails and
// Normalize(Normalize(s)) == Normalize(s).
//
// √ becomes sqrt; a bare operand after it is wrapped, so √4 is sqrt(4) and
// √(x+1) is sqrt(x+1).
func Normalize(text string) string {
	s := glyphs.Replace(text)
	if !strings.Contains(s, "√") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for {
		i := strings.Index(s, "√")
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len("√"):]
		j := 0
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		if j == 0 {
			b.WriteString("sqrt")
			continue
		}
		b.WriteString("sqrt(" + s[:j] + ")")
		s = s[j:]
	}
}

// EulerSymbol is the symbolic backend's name for Euler's number.
const EulerSymbol = "E"

// Symbolic normalizes text for the symbolic engine: on top of Normalize, a
// bare identifier "e" becomes EulerSymbol. Identifiers that merely contain an
// "e" (exp, theta, 1e5) are left alone, but a variable named exactly "e" can
// never be expressed.
func Symbolic(text string) string {
	s := Normalize(text)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if !isWordByte(s[i]) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		if word := s[i:j]; word == "e" {
			b.WriteString(EulerSymbol)
		} else {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
