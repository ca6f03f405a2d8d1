package htmldom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/japaniel/vocabmark/pkg/card"
	"github.com/japaniel/vocabmark/pkg/scan"
	"github.com/japaniel/vocabmark/pkg/vocab"
)

// DataScriptID is the id of the script element holding embedded records.
const DataScriptID = "vocabmark-data"

// ErrAlreadyMounted is returned when mounting a card that is already in a tree.
var ErrAlreadyMounted = errors.New("htmldom: card is already mounted")

// Document is a parsed HTML page.
type Document struct {
	root    *html.Node
	doc     *goquery.Document
	vp      card.Viewport
	anchors map[*html.Node]*Anchor
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromNode(root), nil
}

// FromNode wraps an already parsed tree.
func FromNode(root *html.Node) *Document {
	return &Document{
		root:    root,
		doc:     goquery.NewDocumentFromNode(root),
		vp:      card.Viewport{Width: 1280, Height: 800},
		anchors: make(map[*html.Node]*Anchor),
	}
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return ""
	}
	return sb.String()
}

func (d *Document) body() *html.Node {
	if n := d.doc.Find("body").First(); n.Length() > 0 {
		return n.Get(0)
	}
	return d.root
}

// TextNodes returns the text nodes under body in document order.
func (d *Document) TextNodes() []scan.TextNode[*html.Node] {
	var out []scan.TextNode[*html.Node]
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				out = append(out, textNode{c})
				continue
			}
			walk(c)
		}
	}
	walk(d.body())
	return out
}

type textNode struct{ n *html.Node }

func (t textNode) Text() string { return t.n.Data }

func (t textNode) ParentTag() string {
	if t.n.Parent == nil || t.n.Parent.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(t.n.Parent.Data)
}

func (t textNode) Replace(nodes []*html.Node) {
	parent := t.n.Parent
	if parent == nil {
		return
	}
	for _, n := range nodes {
		parent.InsertBefore(n, t.n)
	}
	parent.RemoveChild(t.n)
}

// FindVocab returns the vocabulary element tagged with id, or nil.
func (d *Document) FindVocab(id string) *html.Node {
	sel := d.doc.Find("[" + AttrVocabID + "]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(AttrVocabID)
		return v == id
	})
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// VocabIDs returns the ids of all vocabulary elements in document order.
func (d *Document) VocabIDs() []string {
	var ids []string
	d.doc.Find("." + ClassVocab).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(AttrVocabID); ok {
			ids = append(ids, v)
		}
	})
	return ids
}

// Blanks returns the blank elements in document order.
func (d *Document) Blanks() []*html.Node {
	return d.doc.Find("." + ClassBlank).Nodes
}

// Anchor is a vocabulary element with its on-screen box.
type Anchor struct {
	Node *html.Node
	Rect card.Rect
}

func (a *Anchor) Bounds() card.Rect { return a.Rect }

// Anchor returns the anchor of the vocabulary element tagged with id, with
// its box set to r. Repeated calls for the same element return the same
// anchor.
func (d *Document) Anchor(id string, r card.Rect) (*Anchor, error) {
	n := d.FindVocab(id)
	if n == nil {
		return nil, fmt.Errorf("htmldom: no vocabulary element %q", id)
	}
	a, ok := d.anchors[n]
	if !ok {
		a = &Anchor{Node: n}
		d.anchors[n] = a
	}
	a.Rect = r
	return a, nil
}

// SetViewport sets the viewport size reported to the card controller.
func (d *Document) SetViewport(vp card.Viewport) { d.vp = vp }

func (d *Document) Viewport() card.Viewport { return d.vp }

// Mount appends the card to body.
func (d *Document) Mount(c *card.Card) error {
	n := c.Node()
	if n.Parent != nil {
		return ErrAlreadyMounted
	}
	d.body().AppendChild(n)
	return nil
}

// Unmount removes the card from the tree.
func (d *Document) Unmount(c *card.Card) {
	if n := c.Node(); n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// EmbedRecords stores recs as JSON in a script element at the end of body,
// replacing a previous one.
func (d *Document) EmbedRecords(recs []vocab.Record) error {
	if recs == nil {
		recs = []vocab.Record{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	d.doc.Find("script#" + DataScriptID).Remove()

	script := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr: []html.Attribute{
			{Key: "type", Val: "application/json"},
			{Key: "id", Val: DataScriptID},
		},
	}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: string(data)})
	d.body().AppendChild(script)
	return nil
}

// EmbeddedRecords reads records stored by EmbedRecords.
func (d *Document) EmbeddedRecords() ([]vocab.Record, error) {
	sel := d.doc.Find("script#" + DataScriptID)
	if sel.Length() == 0 {
		return nil, nil
	}
	var recs []vocab.Record
	if err := json.Unmarshal([]byte(sel.First().Text()), &recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}
