package autoformat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"owlistic-notes/blocknotes/models"
)

func TestDetect(t *testing.T) {
	d := New()

	testCases := []struct {
		content string
		want    models.BlockType
		strip   int
	}{
		{"### Title", models.Heading3Block, 4},
		{"## Hello", models.Heading2Block, 3},
		{"# Top", models.Heading1Block, 2},
		{"- item", models.BulletBlock, 2},
		{"* item", models.BulletBlock, 2},
		{"1. first", models.NumberedBlock, 3},
		{"[] buy milk", models.TodoBlock, 3},
		{"[ ] buy milk", models.TodoBlock, 4},
		{"> quoted", models.QuoteBlock, 2},
		{"``` go", models.CodeBlock, 4},
		{"---", models.DividerBlock, 3},
		{"## ", models.Heading2Block, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.content, func(t *testing.T) {
			m, ok := d.Detect(tc.content)
			assert.True(t, ok)
			assert.Equal(t, tc.want, m.Type)
			assert.Equal(t, tc.strip, m.Strip)
		})
	}
}

func TestDetectNoMatch(t *testing.T) {
	d := New()
	for _, content := range []string{"", "hello", "##Hello", "---x", " ---", "----", "2. second", "#", "-item"} {
		_, ok := d.Detect(content)
		assert.False(t, ok, content)
	}
}

func TestSpecificPrefixesAreNotShadowed(t *testing.T) {
	d := New()
	m, ok := d.Detect("### deep")
	assert.True(t, ok)
	assert.Equal(t, models.Heading3Block, m.Type)

	shadowing := New(
		Rule{Prefix: "# ", Type: models.Heading1Block},
		Rule{Prefix: "## ", Type: models.Heading2Block},
	)
	m, ok = shadowing.Detect("## deep")
	assert.True(t, ok)
	assert.Equal(t, models.Heading2Block, m.Type, "a prefix that does not literally match cannot shadow")
}

func TestEvaluateOnlyTextBlocks(t *testing.T) {
	d := New()
	now := time.Now()

	text := models.NewBlock(uuid.New(), uuid.New(), models.TextBlock, "## Hello", now)
	m, ok := d.Evaluate(text)
	assert.True(t, ok)
	assert.Equal(t, models.Heading2Block, m.Type)

	heading := models.NewBlock(uuid.New(), uuid.New(), models.Heading1Block, "## Hello", now)
	_, ok = d.Evaluate(heading)
	assert.False(t, ok)

	_, ok = d.Evaluate(nil)
	assert.False(t, ok)
}

func TestEvaluateUsesPlainText(t *testing.T) {
	d := New()
	b := models.NewBlock(uuid.New(), uuid.New(), models.TextBlock, "## <b>Hello</b>", time.Now())
	m, ok := d.Evaluate(b)
	assert.True(t, ok)
	assert.Equal(t, 3, m.Strip)
}

func TestRulesReturnsCopy(t *testing.T) {
	d := New()
	rules := d.Rules()
	rules[0].Type = models.QuoteBlock
	assert.Equal(t, models.Heading3Block, d.Rules()[0].Type)
}
