// Package autoformat recognizes markdown-style prefixes typed into plain
// text blocks.
package autoformat

import (
	"strings"
	"unicode/utf8"

	"owlistic-notes/blocknotes/models"
)

// Rule maps a literal prefix to a block type. An Exact rule matches only
// when the whole content equals Prefix.
type Rule struct {
	Prefix string
	Type   models.BlockType
	Exact  bool
}

// DefaultRules is ordered most specific first so a longer prefix is never
// shadowed by a shorter one.
var DefaultRules = []Rule{
	{Prefix: "### ", Type: models.Heading3Block},
	{Prefix: "## ", Type: models.Heading2Block},
	{Prefix: "# ", Type: models.Heading1Block},
	{Prefix: "- ", Type: models.BulletBlock},
	{Prefix: "* ", Type: models.BulletBlock},
	{Prefix: "1. ", Type: models.NumberedBlock},
	{Prefix: "[ ] ", Type: models.TodoBlock},
	{Prefix: "[] ", Type: models.TodoBlock},
	{Prefix: "> ", Type: models.QuoteBlock},
	{Prefix: "``` ", Type: models.CodeBlock},
	{Prefix: "---", Type: models.DividerBlock, Exact: true},
}

// Match describes a detected shortcut. Strip is the number of plain-text
// runes to drop from the start of the content.
type Match struct {
	Rule  Rule
	Type  models.BlockType
	Strip int
}

type Detector struct {
	rules []Rule
}

// New builds a detector over rules, or DefaultRules when none are given.
func New(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Detector{rules: append([]Rule(nil), rules...)}
}

func (d *Detector) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Detect tests plain against the rules in order and returns the first match.
func (d *Detector) Detect(plain string) (Match, bool) {
	for _, r := range d.rules {
		if r.Exact {
			if plain == r.Prefix {
				return Match{Rule: r, Type: r.Type, Strip: utf8.RuneCountInString(plain)}, true
			}
			continue
		}
		if strings.HasPrefix(plain, r.Prefix) {
			return Match{Rule: r, Type: r.Type, Strip: utf8.RuneCountInString(r.Prefix)}, true
		}
	}
	return Match{}, false
}

// Evaluate runs Detect for a block typed text. Blocks of any other type
// never match.
func (d *Detector) Evaluate(b *models.Block) (Match, bool) {
	if b == nil || b.Type != models.TextBlock {
		return Match{}, false
	}
	return d.Detect(b.PlainText())
}
