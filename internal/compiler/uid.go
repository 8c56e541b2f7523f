package compiler

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "export": true, "extends": true, "false": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "let": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "await": true, "enum": true, "static": true,
}

// MarkUsed reserves name so GenerateUid never hands it out.
func (s *State) MarkUsed(name string) {
	s.used[name] = true
}

// IsUsed reports whether name was reserved or generated.
func (s *State) IsUsed(name string) bool {
	return s.used[name]
}

// GenerateUid returns a fresh identifier derived from name: the normalized
// base when it is still free, then base$1, base$2 and so on.
func (s *State) GenerateUid(name string) string {
	base := normalizeIdent(name)
	n := s.uids[base]
	for {
		cand := base
		if n > 0 {
			cand = base + "$" + strconv.Itoa(n)
		}
		n++
		if !s.used[cand] {
			s.uids[base] = n
			s.used[cand] = true
			return cand
		}
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeIdent folds name into a valid host identifier: diacritics are
// dropped, anything else outside [letters digits _ $] becomes '_'.
func normalizeIdent(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '_' || r == '$':
			sb.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	switch {
	case out == "":
		return "_"
	case unicode.IsDigit(rune(out[0])):
		return "_" + out
	case reserved[out]:
		return "_" + out
	}
	return out
}

// componentName turns a file stem such as "user-card" into "UserCard".
func componentName(stem string) string {
	folded, _, err := transform.String(stripMarks, stem)
	if err != nil {
		folded = stem
	}
	parts := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// Caser хранит состояние, поэтому свой на каждый вызов
	titler := cases.Title(language.Und, cases.NoLower)
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(titler.String(p))
	}
	if sb.Len() == 0 {
		return "Template"
	}
	return normalizeIdent(sb.String())
}
