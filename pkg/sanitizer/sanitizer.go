package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reNotAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NormalizeLicense turns "bmdc-12 345" into "BMDC12345".
func NormalizeLicense(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToUpper,
		func(s string) string { return reNotAlnum.ReplaceAllString(s, "") },
	}
	return p.Apply(input)
}

// NormalizeText trims free text and each of its lines, dropping blank lines
// at either end.
func NormalizeText(input string) string {
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
