// Package mark parses the inline bracket markup used to annotate page text.
//
// Three forms are recognized inside square brackets:
//
//	[_:answer:color] or [blank:answer:color]   click-to-reveal blank
//	[text>>translation:color]                  hover translation
//	[word:translation:phonetic:...:color]      vocabulary card
//
// Anything else inside brackets is kept as literal text, so parsing never fails.
package mark

import (
	"iter"
	"regexp"
	"strings"
)

const (
	blankShort = "_"
	blankLong  = "blank"
	hoverSep   = ">>"
	fieldSep   = ":"

	defaultColorKey = "blue"
	maxVocabFields  = 8
)

// A span runs from '[' to the first ']' after it.
var reMark = regexp.MustCompile(`\[([^\]]*)\]`)

// Segments returns a lazy sequence of segments covering text. The sequence
// alternates text and marks: it starts and ends with a Text segment (possibly
// empty) and places a Text segment between any two adjacent marks.
func Segments(text string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		pos := 0
		for pos <= len(text) {
			loc := reMark.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				break
			}
			start, end := pos+loc[0], pos+loc[1]
			inner := text[pos+loc[2] : pos+loc[3]]

			if !yield(newText(text, pos, start)) {
				return
			}
			if !yield(classify(text, start, end, inner)) {
				return
			}
			pos = end
		}
		yield(newText(text, pos, len(text)))
	}
}

// Parse collects Segments(text) into a slice.
func Parse(text string) []Segment {
	var out []Segment
	for s := range Segments(text) {
		out = append(out, s)
	}
	return out
}

func newText(text string, start, end int) Text {
	raw := text[start:end]
	return Text{Span: Span{Start: start, End: end, raw: raw}, Content: raw}
}

func classify(text string, start, end int, inner string) Segment {
	span := Span{Start: start, End: end, raw: text[start:end]}
	parts := strings.Split(inner, fieldSep)

	if parts[0] == blankShort || parts[0] == blankLong {
		return Blank{
			Span:     span,
			Answer:   field(parts, 1),
			ColorKey: orDefault(field(parts, 2), defaultColorKey),
		}
	}

	if i := strings.Index(inner, hoverSep); i >= 0 {
		rest := strings.Split(inner[i+len(hoverSep):], fieldSep)
		return Hover{
			Span:        span,
			Text:        inner[:i],
			Translation: field(rest, 0),
			ColorKey:    orDefault(field(rest, 1), defaultColorKey),
		}
	}

	// a vocab mark needs a word, so [:x] stays literal
	if significantFields(parts) >= 2 && parts[0] != "" {
		return Vocab{
			Span:        span,
			Word:        field(parts, 0),
			Translation: field(parts, 1),
			Phonetic:    field(parts, 2),
			Definition:  field(parts, 3),
			ExampleEN:   field(parts, 4),
			ExampleCN:   field(parts, 5),
			Synonyms:    field(parts, 6),
			ColorKey:    field(parts, maxVocabFields-1),
		}
	}

	return Text{Span: span, Content: span.raw}
}

// significantFields counts fields up to the last non-empty one.
func significantFields(parts []string) int {
	n := len(parts)
	for n > 0 && parts[n-1] == "" {
		n--
	}
	return n
}

func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
