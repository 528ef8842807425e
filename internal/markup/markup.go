// Package markup flattens the pseudo-HTML used in Data Dragon descriptions
// (<mainText>, <stats>, <attention>, <br> ...) into plain text.
package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Options controls what replaces markup while flattening.
type Options struct {
	// Tag is written at both the start and end of every element.
	Tag string
	// Break is written for every <br>.
	Break string
}

// Flatten returns the text content of s with elements replaced per opts.
// Entities are decoded. A comment counts as a single tag.
func Flatten(s string, opts Options) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	walk(doc.Find("body"), &b, opts)
	return b.String()
}

func walk(sel *goquery.Selection, b *strings.Builder, opts Options) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			b.WriteString(node.Text())
		case "#comment":
			b.WriteString(opts.Tag)
		case "#error", "":
		case "br":
			b.WriteString(opts.Break)
		default:
			b.WriteString(opts.Tag)
			walk(node, b, opts)
			b.WriteString(opts.Tag)
		}
	})
}

// StatText flattens a description for stat scanning: every tag and line
// break becomes a space and all whitespace collapses to single spaces.
func StatText(s string) string {
	return CollapseSpace(Flatten(s, Options{Tag: " ", Break: " "}))
}

// Clean flattens a description for display: line breaks become spaces,
// other tags vanish, and runs of two or more whitespace characters collapse.
func Clean(s string) string {
	return strings.TrimSpace(CollapseRuns(Flatten(s, Options{Break: " "})))
}

// Lines flattens a description and splits it on line breaks. Non-breaking
// spaces become plain spaces. Lines are returned untrimmed.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	text := Flatten(s, Options{Break: "\n"})
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return strings.Split(text, "\n")
}

// CollapseSpace replaces every whitespace run with one space and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CollapseRuns replaces runs of two or more whitespace characters with a
// single space. Lone whitespace characters are kept as they are.
func CollapseRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	run := 0
	var first rune
	flush := func() {
		switch run {
		case 0:
		case 1:
			b.WriteRune(first)
		default:
			b.WriteByte(' ')
		}
		run = 0
	}

	for _, r := range s {
		if unicode.IsSpace(r) {
			if run == 0 {
				first = r
			}
			run++
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

// Truncate returns the first n runes of s and whether anything was cut.
func Truncate(s string, n int) (string, bool) {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
