package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Palabras sin valor identificador. "state" NO se ignora: distingue equipos
// (Michigan vs Michigan State).
var ignoreWords = map[string]bool{
	"university": true,
	"college":    true,
	"the":        true,
	"of":         true,
	"at":         true,
	"and":        true,
	"&":          true,
}

// Apodos/mascotas que los proveedores añaden al nombre del equipo.
var mascots = map[string]bool{
	"tar heels":       true,
	"blue devils":     true,
	"crimson tide":    true,
	"wildcats":        true,
	"huskies":         true,
	"spartans":        true,
	"wolverines":      true,
	"buckeyes":        true,
	"bulldogs":        true,
	"tigers":          true,
	"bears":           true,
	"panthers":        true,
	"eagles":          true,
	"cardinals":       true,
	"jayhawks":        true,
	"orangemen":       true,
	"fighting irish":  true,
	"trojans":         true,
	"golden gophers":  true,
	"badgers":         true,
	"hawkeyes":        true,
	"boilermakers":    true,
	"hoosiers":        true,
	"terrapins":       true,
	"nittany lions":   true,
	"scarlet knights": true,
	"aggies":          true,
	"blazers":         true,
	"volunteers":      true,
	"gamecocks":       true,
	"razorbacks":      true,
	"demon deacons":   true,
	"yellow jackets":  true,
}

// Calificadores que identifican programas distintos dentro del mismo nombre
// base. Un desajuste de calificador entre input y candidato veta el match.
// "st" es la forma abreviada de "state" y pesa igual: "Michigan St" nunca
// puede colapsar en "Michigan".
var qualifiers = map[string]bool{
	"state":     true,
	"st":        true,
	"tech":      true,
	"a&m":       true,
	"christian": true,
	"methodist": true,
	"wesleyan":  true,
}

var accentStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize reduce un nombre de equipo a su forma comparable: minúsculas,
// sin acentos, sin puntuación, sin paréntesis de campus, sin mascotas y
// sin palabras de relleno.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(name))
	if stripped, _, err := transform.String(accentStripper, s); err == nil {
		s = stripped
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "-", " ")
	s = stripParentheticals(s)

	for mascot := range mascots {
		s = strings.ReplaceAll(s, mascot, " ")
	}

	var kept []string
	for _, w := range strings.Fields(s) {
		if !ignoreWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// HasQualifier indica si el nombre normalizado contiene algún token
// calificador (state, tech...).
func HasQualifier(normalized string) bool {
	for _, w := range strings.Fields(normalized) {
		if qualifiers[w] {
			return true
		}
	}
	return false
}

// stripParentheticals elimina sufijos tipo "(FL)" o "(NY)".
func stripParentheticals(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// isMascot indica si la frase completa es una mascota conocida.
func isMascot(phrase string) bool {
	return mascots[strings.TrimSpace(phrase)]
}
