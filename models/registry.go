package models

import (
	"fmt"
	"strings"

	"owlistic-notes/blocknotes/richtext"
)

// PayloadField names a persisted type-specific column.
type PayloadField string

const (
	FieldChecked     PayloadField = "checked"
	FieldCollapsed   PayloadField = "collapsed"
	FieldChildren    PayloadField = "children"
	FieldRows        PayloadField = "rows"
	FieldCols        PayloadField = "cols"
	FieldTableData   PayloadField = "table_data"
	FieldURL         PayloadField = "url"
	FieldTitle       PayloadField = "title"
	FieldDescription PayloadField = "description"
	FieldFavicon     PayloadField = "favicon"
	FieldVideoURL    PayloadField = "video_url"
	FieldFileName    PayloadField = "file_name"
	FieldFileSize    PayloadField = "file_size"
	FieldFileData    PayloadField = "file_data"
	FieldEquation    PayloadField = "equation"
	FieldImageURL    PayloadField = "image_url"
	FieldIcon        PayloadField = "icon"
)

// DefaultCalloutIcon is the icon of a fresh callout.
const DefaultCalloutIcon = "💡"

// TypeSpec is the registry row of one block type.
type TypeSpec struct {
	Type  BlockType
	Label string
	// Atomic blocks never take part in a text merge.
	Atomic bool
	// InheritsAcrossSplit continues the type into the right half of a split
	// of a non-empty block.
	InheritsAcrossSplit bool
	// HoldsText reports whether Content is meaningful for the type.
	HoldsText      bool
	Fields         []PayloadField
	DefaultPayload func() Payload
	PlainText      func(b *Block) string
}

// HasField reports whether f is persisted for the type.
func (s TypeSpec) HasField(f PayloadField) bool {
	for _, field := range s.Fields {
		if field == f {
			return true
		}
	}
	return false
}

func emptyPayload() Payload { return Payload{} }

func contentText(b *Block) string { return richtext.PlainText(b.Content) }

func noText(*Block) string { return "" }

func textSpec(t BlockType, label string) TypeSpec {
	return TypeSpec{
		Type:           t,
		Label:          label,
		HoldsText:      true,
		DefaultPayload: emptyPayload,
		PlainText:      contentText,
	}
}

func listSpec(t BlockType, label string, fields ...PayloadField) TypeSpec {
	s := textSpec(t, label)
	s.InheritsAcrossSplit = true
	s.Fields = fields
	return s
}

var registry = []TypeSpec{
	textSpec(TextBlock, "Text"),
	textSpec(Heading1Block, "Heading 1"),
	textSpec(Heading2Block, "Heading 2"),
	textSpec(Heading3Block, "Heading 3"),
	listSpec(BulletBlock, "Bulleted list"),
	listSpec(NumberedBlock, "Numbered list"),
	listSpec(TodoBlock, "To-do", FieldChecked),
	{
		Type:           ToggleBlock,
		Label:          "Toggle",
		HoldsText:      true,
		Fields:         []PayloadField{FieldCollapsed, FieldChildren},
		DefaultPayload: emptyPayload,
		PlainText: func(b *Block) string {
			children := richtext.PlainText(b.Children)
			if children == "" {
				return richtext.PlainText(b.Content)
			}
			return richtext.PlainText(b.Content) + "\n" + children
		},
	},
	textSpec(QuoteBlock, "Quote"),
	textSpec(CodeBlock, "Code"),
	{
		Type:           DividerBlock,
		Label:          "Divider",
		Atomic:         true,
		DefaultPayload: emptyPayload,
		PlainText:      noText,
	},
	{
		Type:           CalloutBlock,
		Label:          "Callout",
		HoldsText:      true,
		Fields:         []PayloadField{FieldIcon},
		DefaultPayload: func() Payload { return Payload{Icon: DefaultCalloutIcon} },
		PlainText:      contentText,
	},
	{
		Type:           ImageBlock,
		Label:          "Image",
		Atomic:         true,
		Fields:         []PayloadField{FieldImageURL},
		DefaultPayload: emptyPayload,
		PlainText:      noText,
	},
	{
		Type:   TableBlock,
		Label:  "Table",
		Fields: []PayloadField{FieldRows, FieldCols, FieldTableData},
		DefaultPayload: func() Payload {
			return Payload{Rows: 2, Cols: 2, TableData: NewTableGrid(2, 2)}
		},
		PlainText: func(b *Block) string {
			rows := make([]string, 0, len(b.TableData))
			for _, row := range b.TableData {
				rows = append(rows, strings.Join(row, "\t"))
			}
			return strings.Join(rows, "\n")
		},
	},
	{
		Type:           BookmarkBlock,
		Label:          "Bookmark",
		Fields:         []PayloadField{FieldURL, FieldTitle, FieldDescription, FieldFavicon},
		DefaultPayload: emptyPayload,
		PlainText: func(b *Block) string {
			return strings.TrimSpace(b.Title + "\n" + b.URL)
		},
	},
	{
		Type:           VideoBlock,
		Label:          "Video",
		Fields:         []PayloadField{FieldVideoURL},
		DefaultPayload: emptyPayload,
		PlainText:      func(b *Block) string { return b.VideoURL },
	},
	{
		Type:           FileBlock,
		Label:          "File",
		Fields:         []PayloadField{FieldFileName, FieldFileSize, FieldFileData},
		DefaultPayload: emptyPayload,
		PlainText:      func(b *Block) string { return b.FileName },
	},
	{
		Type:           EquationBlock,
		Label:          "Equation",
		Fields:         []PayloadField{FieldEquation},
		DefaultPayload: emptyPayload,
		PlainText:      func(b *Block) string { return b.Equation },
	},
}

var specsByType = func() map[BlockType]TypeSpec {
	m := make(map[BlockType]TypeSpec, len(registry))
	for _, s := range registry {
		m[s.Type] = s
	}
	return m
}()

// Spec looks up the registry row of a block type.
func Spec(t BlockType) (TypeSpec, bool) {
	s, ok := specsByType[t]
	return s, ok
}

// MustSpec is Spec for types known to be registered.
func MustSpec(t BlockType) TypeSpec {
	s, ok := Spec(t)
	if !ok {
		panic(fmt.Sprintf("block type %q is not registered", t))
	}
	return s
}

// Types lists every block type in registry order.
func Types() []BlockType {
	out := make([]BlockType, len(registry))
	for i, s := range registry {
		out[i] = s.Type
	}
	return out
}

func ParseBlockType(s string) (BlockType, error) {
	t := BlockType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := specsByType[t]; !ok {
		return "", fmt.Errorf("unknown block type %q", s)
	}
	return t, nil
}
