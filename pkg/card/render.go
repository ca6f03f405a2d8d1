package card

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/japaniel/vocabmark/pkg/vocab"
)

// Class names of the card markup.
const (
	ClassCard        = "vocab-card"
	ClassShow        = "show"
	ClassClose       = "vocab-card-close"
	ClassContent     = "vocab-card-content"
	ClassHeader      = "vocab-card-header"
	ClassTitle       = "vocab-card-title"
	ClassPhonetic    = "vocab-card-phonetic"
	ClassButtons     = "vocab-card-buttons"
	ClassButton      = "vocab-card-btn"
	ClassTranslation = "vocab-card-translation"
	ClassSection     = "vocab-card-section"
	ClassSectionHead = "vocab-card-section-title"
	ClassExampleEN   = "vocab-card-example-en"
	ClassExampleCN   = "vocab-card-example-cn"
	ClassSynonym     = "vocab-synonym-tag"
	ClassActive      = "active"
)

const (
	titleAddFavorite    = "Add to favorites"
	titleRemoveFavorite = "Remove from favorites"
	glyphFavorite       = "❤"
	glyphNotFavorite    = "♡"
)

// Card is a rendered vocabulary popup.
type Card struct {
	Record    vocab.Record
	Placement Placement
	Favorite  bool
	Shown     bool

	root     *html.Node
	favorite *html.Node
}

// Node returns the card root element.
func (c *Card) Node() *html.Node { return c.root }

// HTML renders the card markup.
func (c *Card) HTML() (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, c.root); err != nil {
		return "", fmt.Errorf("render card: %w", err)
	}
	return sb.String(), nil
}

func newCard(rec vocab.Record, variant Variant, favorite bool) *Card {
	c := &Card{Record: rec, Favorite: favorite}
	c.root = element(atom.Div, ClassCard)

	closeBtn := element(atom.Span, ClassClose)
	closeBtn.AppendChild(text("×"))
	c.root.AppendChild(closeBtn)

	content := element(atom.Div, ClassContent)
	c.root.AppendChild(content)

	header := element(atom.Div, ClassHeader)
	content.AppendChild(header)
	title := element(atom.Div, ClassTitle)
	title.AppendChild(text(rec.Word))
	header.AppendChild(title)
	if rec.Phonetic != "" {
		ph := element(atom.Div, ClassPhonetic)
		ph.AppendChild(text(rec.Phonetic))
		header.AppendChild(ph)
	}

	if variant == VariantEnhanced {
		buttons := element(atom.Div, ClassButtons)
		sound := element(atom.Button, ClassButton+" sound")
		sound.Attr = append(sound.Attr, html.Attribute{Key: "title", Val: "Pronounce"})
		sound.AppendChild(text("🔊"))
		buttons.AppendChild(sound)

		c.favorite = element(atom.Button, ClassButton+" favorite")
		buttons.AppendChild(c.favorite)
		c.setFavorite(favorite)
		header.AppendChild(buttons)
	}

	tr := element(atom.Div, ClassTranslation)
	setAttr(tr, "style", "border-left-color: "+rec.Color)
	tr.AppendChild(text(rec.Translation))
	content.AppendChild(tr)

	if rec.Definition != "" {
		sec := section("Definition")
		body := element(atom.Div, "")
		body.AppendChild(text(rec.Definition))
		sec.AppendChild(body)
		content.AppendChild(sec)
	}

	if rec.ExampleEN != "" || rec.ExampleCN != "" {
		sec := section("Example")
		if rec.ExampleEN != "" {
			en := element(atom.Div, ClassExampleEN)
			en.AppendChild(text(rec.ExampleEN))
			sec.AppendChild(en)
		}
		if rec.ExampleCN != "" {
			cn := element(atom.Div, ClassExampleCN)
			cn.AppendChild(text(rec.ExampleCN))
			sec.AppendChild(cn)
		}
		content.AppendChild(sec)
	}

	if syns := rec.SynonymList(); len(syns) > 0 {
		sec := section("Synonyms")
		tags := element(atom.Div, "")
		for i, s := range syns {
			if i > 0 {
				tags.AppendChild(text(" "))
			}
			tag := element(atom.Span, ClassSynonym)
			tag.AppendChild(text(s))
			tags.AppendChild(tag)
		}
		sec.AppendChild(tags)
		content.AppendChild(sec)
	}

	c.applyStyle()
	return c
}

func section(title string) *html.Node {
	sec := element(atom.Div, ClassSection)
	head := element(atom.Div, ClassSectionHead)
	head.AppendChild(text(title))
	sec.AppendChild(head)
	return sec
}

func (c *Card) place(p Placement) {
	c.Placement = p
	c.applyStyle()
}

func (c *Card) reveal() {
	c.Shown = true
	setAttr(c.root, "class", ClassCard+" "+ClassShow)
}

func (c *Card) setFavorite(on bool) {
	c.Favorite = on
	if c.favorite == nil {
		return
	}
	class, title, glyph := ClassButton+" favorite", titleAddFavorite, glyphNotFavorite
	if on {
		class, title, glyph = class+" "+ClassActive, titleRemoveFavorite, glyphFavorite
	}
	setAttr(c.favorite, "class", class)
	setAttr(c.favorite, "title", title)
	for ch := c.favorite.FirstChild; ch != nil; ch = c.favorite.FirstChild {
		c.favorite.RemoveChild(ch)
	}
	c.favorite.AppendChild(text(glyph))
}

func (c *Card) applyStyle() {
	var sb strings.Builder
	sb.WriteString("--vocab-color: " + c.Record.Color)
	if c.Placement.Above {
		sb.WriteString("; bottom: " + px(c.Placement.Bottom))
	} else {
		sb.WriteString("; top: " + px(c.Placement.Top))
	}
	sb.WriteString("; left: " + px(c.Placement.Left))
	setAttr(c.root, "style", sb.String())
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
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
