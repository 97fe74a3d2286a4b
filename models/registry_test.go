package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegistryCoversAllTypes(t *testing.T) {
	types := Types()
	assert.Len(t, types, 18)

	seen := map[BlockType]bool{}
	for _, bt := range types {
		assert.False(t, seen[bt], "duplicate %s", bt)
		seen[bt] = true

		spec := MustSpec(bt)
		assert.NotNil(t, spec.DefaultPayload, bt)
		assert.NotNil(t, spec.PlainText, bt)
		assert.NotEmpty(t, spec.Label, bt)
	}
}

func TestRegistryFlags(t *testing.T) {
	for _, bt := range Types() {
		spec := MustSpec(bt)
		switch bt {
		case DividerBlock, ImageBlock:
			assert.True(t, spec.Atomic, bt)
		default:
			assert.False(t, spec.Atomic, bt)
		}
		switch bt {
		case BulletBlock, NumberedBlock, TodoBlock:
			assert.True(t, spec.InheritsAcrossSplit, bt)
		default:
			assert.False(t, spec.InheritsAcrossSplit, bt)
		}
	}
}

func TestParseBlockType(t *testing.T) {
	bt, err := ParseBlockType(" H2 ")
	assert.NoError(t, err)
	assert.Equal(t, Heading2Block, bt)

	_, err = ParseBlockType("heading")
	assert.Error(t, err)

	_, ok := Spec(BlockType("heading"))
	assert.False(t, ok)
	assert.Panics(t, func() { MustSpec(BlockType("heading")) })
}

func TestPlainTextProjection(t *testing.T) {
	now := time.Now()
	newBlock := func(bt BlockType, content string) *Block {
		return NewBlock(uuid.New(), uuid.New(), bt, content, now)
	}

	assert.Equal(t, "bold text", newBlock(TextBlock, "<b>bold</b> text").PlainText())
	assert.Equal(t, "", newBlock(DividerBlock, "").PlainText())

	toggle := newBlock(ToggleBlock, "Summary")
	assert.Equal(t, "Summary", toggle.PlainText())
	toggle.Children = "<i>hidden</i>"
	assert.Equal(t, "Summary\nhidden", toggle.PlainText())

	table := newBlock(TableBlock, "")
	table.TableData[1] = []string{"a", "b"}
	assert.Equal(t, "Header 1\tHeader 2\na\tb", table.PlainText())

	bookmark := newBlock(BookmarkBlock, "")
	bookmark.URL = "https://go.dev"
	assert.Equal(t, "https://go.dev", bookmark.PlainText())
	bookmark.Title = "Go"
	assert.Equal(t, "Go\nhttps://go.dev", bookmark.PlainText())

	file := newBlock(FileBlock, "")
	file.FileName = "report.pdf"
	assert.Equal(t, "report.pdf", file.PlainText())

	eq := newBlock(EquationBlock, "")
	eq.Equation = "e=mc^2"
	assert.Equal(t, "e=mc^2", eq.PlainText())

	unknown := &Block{Type: BlockType("nope")}
	assert.Equal(t, "", unknown.PlainText())
	assert.False(t, unknown.IsAtomic())
}
