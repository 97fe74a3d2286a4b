// Package richtext handles the inline markup stored in block content.
//
// Content is a small HTML subset. Plain strings (no '<' or '&') are the
// common case and pass through every function byte-identical.
package richtext

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var allowedElements = map[atom.Atom]bool{
	atom.B:      true,
	atom.Strong: true,
	atom.I:      true,
	atom.Em:     true,
	atom.U:      true,
	atom.S:      true,
	atom.Strike: true,
	atom.Del:    true,
	atom.Code:   true,
	atom.Mark:   true,
	atom.A:      true,
	atom.Span:   true,
	atom.Br:     true,
	atom.Sub:    true,
	atom.Sup:    true,
}

var allowedSchemes = []string{"http://", "https://", "mailto:"}

func isPlain(s string) bool {
	return !strings.ContainsAny(s, "<&")
}

func parse(markup string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(markup), context)
}

func render(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		// Rendering to a strings.Builder cannot fail.
		_ = html.Render(&sb, n)
	}
	return sb.String()
}

func dropsContent(n *html.Node) bool {
	return n.DataAtom == atom.Script || n.DataAtom == atom.Style
}

// Sanitize strips every element and attribute outside the inline subset.
// Disallowed elements are unwrapped, keeping their text.
func Sanitize(markup string) string {
	if isPlain(markup) {
		return markup
	}
	nodes, err := parse(markup)
	if err != nil {
		return html.EscapeString(markup)
	}
	var out []*html.Node
	for _, n := range nodes {
		out = append(out, clean(n)...)
	}
	return render(out)
}

func clean(n *html.Node) []*html.Node {
	switch n.Type {
	case html.TextNode:
		return []*html.Node{{Type: html.TextNode, Data: n.Data}}
	case html.ElementNode:
		if dropsContent(n) {
			return nil
		}
		var kids []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, clean(c)...)
		}
		if !allowedElements[n.DataAtom] {
			return kids
		}
		el := &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: n.DataAtom, Attr: cleanAttrs(n)}
		for _, k := range kids {
			el.AppendChild(k)
		}
		return []*html.Node{el}
	default:
		return nil
	}
}

func cleanAttrs(n *html.Node) []html.Attribute {
	if n.DataAtom != atom.A {
		return nil
	}
	for _, a := range n.Attr {
		if a.Key != "href" {
			continue
		}
		href := strings.ToLower(strings.TrimSpace(a.Val))
		for _, scheme := range allowedSchemes {
			if strings.HasPrefix(href, scheme) {
				return []html.Attribute{{Key: "href", Val: strings.TrimSpace(a.Val)}}
			}
		}
	}
	return nil
}

// PlainText projects markup onto its text. A <br> projects to "\n".
func PlainText(markup string) string {
	if isPlain(markup) {
		return markup
	}
	nodes, err := parse(markup)
	if err != nil {
		return markup
	}
	var sb strings.Builder
	for _, n := range nodes {
		writeText(&sb, n)
	}
	return sb.String()
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
	case html.ElementNode:
		if dropsContent(n) {
			return
		}
		if n.DataAtom == atom.Br {
			sb.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(sb, c)
		}
	}
}

// Len is the rune length of the plain-text projection: the range of valid
// caret offsets is [0, Len].
func Len(markup string) int {
	return utf8.RuneCountInString(PlainText(markup))
}

// Slice keeps the plain-text runes in [from, to) and the inline elements
// around them. A negative to means the end of the content.
func Slice(markup string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to < 0 {
		to = math.MaxInt
	}
	if from >= to {
		return ""
	}
	if isPlain(markup) {
		runes := []rune(markup)
		if from >= len(runes) {
			return ""
		}
		if to > len(runes) {
			to = len(runes)
		}
		return string(runes[from:to])
	}
	nodes, err := parse(markup)
	if err != nil {
		return ""
	}
	pos := 0
	var out []*html.Node
	for _, n := range nodes {
		out = append(out, sliceNode(n, &pos, from, to)...)
	}
	return render(out)
}

func sliceNode(n *html.Node, pos *int, from, to int) []*html.Node {
	switch n.Type {
	case html.TextNode:
		runes := []rune(n.Data)
		start := *pos
		*pos += len(runes)
		lo, hi := max(from, start), min(to, *pos)
		if lo >= hi {
			return nil
		}
		return []*html.Node{{Type: html.TextNode, Data: string(runes[lo-start : hi-start])}}
	case html.ElementNode:
		if dropsContent(n) {
			return nil
		}
		if n.DataAtom == atom.Br {
			at := *pos
			*pos++
			if at < from || at >= to {
				return nil
			}
			return []*html.Node{{Type: html.ElementNode, Data: n.Data, DataAtom: n.DataAtom}}
		}
		var kids []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, sliceNode(c, pos, from, to)...)
		}
		if len(kids) == 0 {
			return nil
		}
		el := &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: n.DataAtom, Attr: append([]html.Attribute(nil), n.Attr...)}
		for _, k := range kids {
			el.AppendChild(k)
		}
		return []*html.Node{el}
	default:
		return nil
	}
}

// SplitAt cuts markup at a caret offset.
func SplitAt(markup string, offset int) (before, after string) {
	return Slice(markup, 0, offset), Slice(markup, offset, -1)
}

// TrimPrefix drops the first n plain-text runes.
func TrimPrefix(markup string, n int) string {
	if n <= 0 {
		return markup
	}
	return Slice(markup, n, -1)
}
