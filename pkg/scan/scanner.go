// Package scan finds marked-up text in a page and splices built fragments in its place.
package scan

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/fragment"
	"github.com/japaniel/vocabmark/pkg/mark"
)

// TextNode is a text node of the page.
type TextNode[N any] interface {
	// Text returns the raw text content.
	Text() string
	// ParentTag returns the lower-case tag name of the parent element.
	ParentTag() string
	// Replace swaps the text node for nodes, in order, leaving siblings untouched.
	Replace(nodes []N)
}

// Source yields the text nodes of a page in document order.
type Source[N any] interface {
	TextNodes() []TextNode[N]
}

// Stats summarizes one scan.
type Stats struct {
	Candidates int
	Replaced   int
	Blanks     int
	Hovers     int
	Vocabs     int
	Literals   int
}

// Scanner walks a page and replaces marks with fragments.
type Scanner[N any] struct {
	builder *fragment.Builder[N]
	log     *zap.Logger
}

// New creates a scanner using builder for fragment construction.
func New[N any](builder *fragment.Builder[N], log *zap.Logger) *Scanner[N] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner[N]{builder: builder, log: log}
}

// Candidate reports whether a text node may contain marks.
func Candidate(parentTag, text string) bool {
	switch strings.ToLower(parentTag) {
	case "script", "style":
		return false
	}
	return strings.Contains(text, "[") && strings.Contains(text, "]")
}

// Scan processes every candidate text node of src. Candidates are collected
// before any replacement so new nodes are never rescanned.
func (s *Scanner[N]) Scan(src Source[N]) Stats {
	var (
		st         Stats
		candidates []TextNode[N]
	)
	for _, n := range src.TextNodes() {
		if Candidate(n.ParentTag(), n.Text()) {
			candidates = append(candidates, n)
		}
	}
	st.Candidates = len(candidates)

	for _, n := range candidates {
		segs := mark.Parse(n.Text())
		if !mark.HasMarks(segs) {
			continue
		}
		count(&st, segs)
		n.Replace(s.builder.Build(slices.Values(segs)))
		st.Replaced++
	}

	s.log.Debug("Page scanned",
		zap.Int("candidates", st.Candidates),
		zap.Int("replaced", st.Replaced),
		zap.Int("blanks", st.Blanks),
		zap.Int("hovers", st.Hovers),
		zap.Int("vocabs", st.Vocabs),
		zap.Int("literals", st.Literals))
	return st
}

func count(st *Stats, segs []mark.Segment) {
	for _, seg := range segs {
		switch seg.Kind() {
		case mark.KindBlank:
			st.Blanks++
		case mark.KindHover:
			st.Hovers++
		case mark.KindVocab:
			st.Vocabs++
		case mark.KindText:
			if src := seg.Source(); strings.HasPrefix(src, "[") && strings.HasSuffix(src, "]") {
				st.Literals++
			}
		}
	}
}
