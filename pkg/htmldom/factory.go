// Package htmldom adapts x/net/html trees to the fragment, scan and card ports.
package htmldom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/japaniel/vocabmark/pkg/vocab"
)

// Class and attribute names of the generated markup.
const (
	ClassBlank        = "blank-box"
	ClassBlankContent = "blank-content"
	ClassHover        = "hover-word"
	ClassVocab        = "vocab-word"
	ClassShow         = "show"

	AttrTranslation = "data-translation"
	AttrVocabID     = "data-vocab-id"
	AttrColor       = "data-color"
)

// backgroundAlpha is appended to a hex color to get the light vocab background.
const backgroundAlpha = "20"

// Factory creates annotation elements as html nodes.
type Factory struct{}

func (Factory) Text(content string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: content}
}

func (Factory) Blank(answer, color string) *html.Node {
	box := span(ClassBlank, html.Attribute{Key: "style", Val: "--answer-color: " + color})
	content := span(ClassBlankContent)
	content.AppendChild(&html.Node{Type: html.TextNode, Data: answer})
	box.AppendChild(content)
	return box
}

func (Factory) Hover(text, translation, color string) *html.Node {
	n := span(ClassHover,
		html.Attribute{Key: AttrTranslation, Val: translation},
		html.Attribute{Key: "style", Val: "color: " + color + "; text-decoration-color: " + color},
	)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func (Factory) Vocab(rec vocab.Record) *html.Node {
	n := span(ClassVocab,
		html.Attribute{Key: AttrVocabID, Val: rec.ID},
		html.Attribute{Key: AttrColor, Val: rec.Color},
		html.Attribute{Key: "style", Val: "color: " + rec.Color + "; background-color: " + rec.Color + backgroundAlpha},
	)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: rec.Word})
	return n
}

func span(class string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr:     append([]html.Attribute{{Key: "class", Val: class}}, attrs...),
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// ToggleReveal flips the revealed state of a blank and returns the new state.
// Other nodes are left alone and report false.
func ToggleReveal(n *html.Node) bool {
	if n == nil || !hasClass(n, ClassBlank) {
		return false
	}
	v, _ := attr(n, "class")
	var kept []string
	shown := false
	for _, c := range strings.Fields(v) {
		if c == ClassShow {
			shown = true
			continue
		}
		kept = append(kept, c)
	}
	if !shown {
		kept = append(kept, ClassShow)
	}
	setAttr(n, "class", strings.Join(kept, " "))
	return !shown
}

// Revealed reports whether a blank shows its answer.
func Revealed(n *html.Node) bool {
	return n != nil && hasClass(n, ClassBlank) && hasClass(n, ClassShow)
}
