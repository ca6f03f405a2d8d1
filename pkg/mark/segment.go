package mark

import "strings"

// Kind identifies the variant of a Segment.
type Kind int

const (
	KindText Kind = iota
	KindBlank
	KindHover
	KindVocab
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBlank:
		return "blank"
	case KindHover:
		return "hover"
	case KindVocab:
		return "vocab"
	}
	return "unknown"
}

// Span locates a segment in the parsed input (byte offsets, End exclusive).
type Span struct {
	Start int
	End   int
	raw   string
}

// Source returns the exact input substring the segment was produced from.
func (s Span) Source() string { return s.raw }

// Segment is one piece of parsed text: Text, Blank, Hover or Vocab.
type Segment interface {
	Kind() Kind
	Source() string
	Pos() Span
	segment()
}

// Text is literal text, including malformed marks kept verbatim.
type Text struct {
	Span
	Content string
}

// Blank is a click-to-reveal answer.
type Blank struct {
	Span
	Answer   string
	ColorKey string
}

// Hover is text with a translation shown on hover.
type Hover struct {
	Span
	Text        string
	Translation string
	ColorKey    string
}

// Vocab is a word with the data shown on its popup card.
type Vocab struct {
	Span
	Word        string
	Translation string
	Phonetic    string
	Definition  string
	ExampleEN   string
	ExampleCN   string
	Synonyms    string
	ColorKey    string
}

func (Text) Kind() Kind  { return KindText }
func (Blank) Kind() Kind { return KindBlank }
func (Hover) Kind() Kind { return KindHover }
func (Vocab) Kind() Kind { return KindVocab }

func (s Text) Pos() Span  { return s.Span }
func (s Blank) Pos() Span { return s.Span }
func (s Hover) Pos() Span { return s.Span }
func (s Vocab) Pos() Span { return s.Span }

func (Text) segment()  {}
func (Blank) segment() {}
func (Hover) segment() {}
func (Vocab) segment() {}

// SynonymList splits Synonyms on commas, trimming blanks and dropping empty entries.
func (v Vocab) SynonymList() []string {
	if v.Synonyms == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v.Synonyms, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// HasMarks reports whether any segment is something other than plain text.
func HasMarks(segs []Segment) bool {
	for _, s := range segs {
		if s.Kind() != KindText {
			return true
		}
	}
	return false
}

// Join concatenates the source text of segs.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Source())
	}
	return b.String()
}
