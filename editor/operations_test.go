package editor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owlistic-notes/blocknotes/models"
)

func TestInsertAfter(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("A"), text("B"))

	focus, err := e.InsertAfter(&blockIDs[0], models.QuoteBlock, "quoted")
	require.NoError(t, err)

	snap := snapshot(t, e)
	assert.Equal(t, []string{"A", "quoted", "B"}, contents(t, e))
	assert.Equal(t, models.QuoteBlock, snap.Blocks[1].Type)
	assert.Equal(t, Focus{BlockID: snap.Blocks[1].ID, Caret: 6}, focus)
	assert.True(t, e.Pending())
}

func TestInsertAfterMissingTargetAppends(t *testing.T) {
	e, _, _, _ := loadSeeded(t, text("A"), text("B"))

	missing := uuid.New()
	_, err := e.InsertAfter(&missing, models.TextBlock, "C")
	require.NoError(t, err)
	_, err = e.InsertAfter(nil, models.TextBlock, "D")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, contents(t, e))
}

func TestInsertAfterUnknownType(t *testing.T) {
	e, _, _, _ := loadSeeded(t, text("A"))

	_, err := e.InsertAfter(nil, models.BlockType("widget"), "")
	assert.ErrorIs(t, err, ErrUnknownBlockType)
	assert.Equal(t, []string{"A"}, contents(t, e))
	assert.False(t, e.Pending())
}

func TestInsertAfterSanitizesAndAutoformats(t *testing.T) {
	e, _, _, _ := loadSeeded(t, text("A"))

	focus, err := e.InsertAfter(nil, models.TextBlock, `## <b onclick="x()">Hi</b>`)
	require.NoError(t, err)

	b := snapshot(t, e).Blocks[1]
	assert.Equal(t, models.Heading2Block, b.Type)
	assert.Equal(t, "<b>Hi</b>", b.Content)
	assert.Equal(t, 2, focus.Caret)
}

func TestSplitListItemInherits(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.BulletBlock, "foobar"})

	focus, err := e.SplitAtCursor(blockIDs[0], "foo", "bar")
	require.NoError(t, err)

	snap := snapshot(t, e)
	require.Len(t, snap.Blocks, 2)
	assert.Equal(t, blockIDs[0], snap.Blocks[0].ID)
	assert.Equal(t, "foo", snap.Blocks[0].Content)
	assert.Equal(t, models.BulletBlock, snap.Blocks[1].Type)
	assert.Equal(t, "bar", snap.Blocks[1].Content)
	assert.NotEqual(t, blockIDs[0], snap.Blocks[1].ID)
	assert.Equal(t, Focus{BlockID: snap.Blocks[1].ID}, focus)
}

func TestSplitEmptyListItemExitsList(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.NumberedBlock, ""})

	_, err := e.SplitAtCursor(blockIDs[0], "", "")
	require.NoError(t, err)

	snap := snapshot(t, e)
	assert.Equal(t, models.NumberedBlock, snap.Blocks[0].Type)
	assert.Equal(t, models.TextBlock, snap.Blocks[1].Type)
}

func TestSplitNonInheritingTypeContinuesAsText(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.Heading1Block, "Title here"})

	_, err := e.SplitAtCaret(blockIDs[0], 5)
	require.NoError(t, err)

	snap := snapshot(t, e)
	assert.Equal(t, "Title", snap.Blocks[0].Content)
	assert.Equal(t, models.Heading1Block, snap.Blocks[0].Type)
	assert.Equal(t, " here", snap.Blocks[1].Content)
	assert.Equal(t, models.TextBlock, snap.Blocks[1].Type)
}

func TestSplitTodoStartsUnchecked(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.TodoBlock, "buy milk"})
	_, err := e.SetChecked(blockIDs[0], true)
	require.NoError(t, err)

	_, err = e.SplitAtCaret(blockIDs[0], 100)
	require.NoError(t, err)

	snap := snapshot(t, e)
	assert.True(t, snap.Blocks[0].Checked)
	assert.Equal(t, "buy milk", snap.Blocks[0].Content)
	assert.Equal(t, models.TodoBlock, snap.Blocks[1].Type)
	assert.False(t, snap.Blocks[1].Checked)
	assert.Equal(t, "", snap.Blocks[1].Content)
}

func TestSplitAtomicBlockIsInvalid(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.DividerBlock, ""})

	_, err := e.SplitAtCursor(blockIDs[0], "", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, snapshot(t, e).Blocks, 1)
}

func TestBackspaceMergesIntoPrevious(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("foo"), text("bar"))

	focus, err := e.BackspaceAtStart(blockIDs[1])
	require.NoError(t, err)

	assert.Equal(t, []string{"foobar"}, contents(t, e))
	assert.Equal(t, Focus{BlockID: blockIDs[0], Caret: 3}, focus)
}

func TestBackspaceCaretCountsPlainText(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("<i>fo</i>o"), text("bar"))

	focus, err := e.BackspaceAtStart(blockIDs[1])
	require.NoError(t, err)
	assert.Equal(t, 3, focus.Caret)
}

func TestBackspaceOnTypedBlockConvertsFirst(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("foo"), blockSeed{models.Heading2Block, "bar"})

	focus, err := e.BackspaceAtStart(blockIDs[1])
	require.NoError(t, err)

	snap := snapshot(t, e)
	require.Len(t, snap.Blocks, 2)
	assert.Equal(t, models.TextBlock, snap.Blocks[1].Type)
	assert.Equal(t, "bar", snap.Blocks[1].Content)
	assert.Equal(t, Focus{BlockID: blockIDs[1]}, focus)

	_, err = e.BackspaceAtStart(blockIDs[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"foobar"}, contents(t, e))
}

func TestBackspaceAfterAtomicIsNoOp(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.DividerBlock, ""}, text("bar"))
	before := snapshot(t, e)

	focus, err := e.BackspaceAtStart(blockIDs[1])
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, before.Focus, focus)
	assert.Equal(t, before.Blocks, snapshot(t, e).Blocks)
	assert.False(t, e.Pending())
}

func TestBackspaceOnFirstBlockIsNoOp(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("only"))

	_, err := e.BackspaceAtStart(blockIDs[0])
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, []string{"only"}, contents(t, e))
}

func TestDeleteAtEndMergesNext(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("foo"), blockSeed{models.QuoteBlock, "bar"}, text("baz"))

	focus, err := e.DeleteAtEnd(blockIDs[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"foobar", "baz"}, contents(t, e))
	assert.Equal(t, Focus{BlockID: blockIDs[0], Caret: 3}, focus)
}

func TestDeleteAtEndBeforeAtomicIsNoOp(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("foo"), blockSeed{models.ImageBlock, ""})

	_, err := e.DeleteAtEnd(blockIDs[0])
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, snapshot(t, e).Blocks, 2)

	_, err = e.DeleteAtEnd(blockIDs[1])
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestChangeType(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("keep me"))

	focus, err := e.ChangeType(blockIDs[0], models.Heading3Block)
	require.NoError(t, err)
	assert.Equal(t, Focus{BlockID: blockIDs[0], Caret: 7}, focus)
	b := snapshot(t, e).Blocks[0]
	assert.Equal(t, models.Heading3Block, b.Type)
	assert.Equal(t, "keep me", b.Content)

	_, err = e.ChangeType(blockIDs[0], models.TableBlock)
	require.NoError(t, err)
	b = snapshot(t, e).Blocks[0]
	assert.Equal(t, blockIDs[0], b.ID)
	assert.Equal(t, "", b.Content)
	assert.Equal(t, models.TableGrid{{"Header 1", "Header 2"}, {"", ""}}, b.TableData)
	assert.Equal(t, 2, b.Rows)
	assert.Equal(t, 2, b.Cols)

	_, err = e.ChangeType(blockIDs[0], models.CalloutBlock)
	require.NoError(t, err)
	b = snapshot(t, e).Blocks[0]
	assert.Equal(t, models.DefaultCalloutIcon, b.Icon)
	assert.Nil(t, b.TableData)
}

func TestChangeTypeSameTypeDoesNotSchedule(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("x"))

	_, err := e.ChangeType(blockIDs[0], models.TextBlock)
	require.NoError(t, err)
	assert.False(t, e.Pending())

	_, err = e.ChangeType(blockIDs[0], models.BlockType("nope"))
	assert.ErrorIs(t, err, ErrUnknownBlockType)
}

func TestReorder(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("A"), text("B"), text("C"), text("D"))

	require.NoError(t, e.Reorder(blockIDs[2], blockIDs[0]))
	assert.Equal(t, []string{"C", "A", "B", "D"}, contents(t, e))

	require.NoError(t, e.Reorder(blockIDs[0], blockIDs[0]))
	assert.Equal(t, []string{"C", "A", "B", "D"}, contents(t, e))

	assert.ErrorIs(t, e.Reorder(blockIDs[0], uuid.New()), ErrDanglingReference)
	assert.ErrorIs(t, e.Reorder(uuid.New(), blockIDs[0]), ErrDanglingReference)
	assert.Equal(t, []string{"C", "A", "B", "D"}, contents(t, e))

	for i, b := range snapshot(t, e).Blocks {
		assert.Equal(t, i, b.Order)
	}
}

func TestReorderMovesDownward(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("A"), text("B"), text("C"), text("D"))

	require.NoError(t, e.Reorder(blockIDs[0], blockIDs[3]))
	assert.Equal(t, []string{"B", "C", "A", "D"}, contents(t, e))
}

func TestDeleteBlockFocus(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("first"), text("second"), text("third"))

	focus, err := e.DeleteBlock(blockIDs[1])
	require.NoError(t, err)
	assert.Equal(t, Focus{BlockID: blockIDs[0], Caret: 5}, focus)

	focus, err = e.DeleteBlock(blockIDs[0])
	require.NoError(t, err)
	assert.Equal(t, Focus{BlockID: blockIDs[2]}, focus)

	_, err = e.DeleteBlock(blockIDs[0])
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestDeleteOnlyBlockResetsIt(t *testing.T) {
	e, store, note, blockIDs := loadSeeded(t, blockSeed{models.TableBlock, ""})

	focus, err := e.DeleteBlock(blockIDs[0])
	require.NoError(t, err)

	snap := snapshot(t, e)
	require.Len(t, snap.Blocks, 1)
	b := snap.Blocks[0]
	assert.Equal(t, blockIDs[0], b.ID)
	assert.Equal(t, models.TextBlock, b.Type)
	assert.Equal(t, "", b.Content)
	assert.Equal(t, models.Payload{}, b.Payload)
	assert.Equal(t, Focus{BlockID: blockIDs[0]}, focus)

	require.NoError(t, e.Flush(context.Background()))
	records := store.Records(note.ID)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Rows)
	assert.Empty(t, store.Deletes)
}

func TestSetContentAutoformat(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		caret   int
		want    models.BlockType
		content string
		focus   int
	}{
		{"heading", "## Hello", 8, models.Heading2Block, "Hello", 5},
		{"divider", "---", 3, models.DividerBlock, "", 0},
		{"todo", "[] buy milk", 11, models.TodoBlock, "buy milk", 8},
		{"bullet", "- ", 2, models.BulletBlock, "", 0},
		{"code", "``` go", 6, models.CodeBlock, "go", 2},
		{"plain", "#hashtag", 8, models.TextBlock, "#hashtag", 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, _, blockIDs := loadSeeded(t, text(""))

			focus, err := e.SetContent(blockIDs[0], tc.input, tc.caret)
			require.NoError(t, err)

			b := snapshot(t, e).Blocks[0]
			assert.Equal(t, tc.want, b.Type)
			assert.Equal(t, tc.content, b.Content)
			assert.Equal(t, tc.focus, focus.Caret)
			assert.False(t, b.Checked)
		})
	}
}

func TestSetContentDoesNotRetriggerOnTypedBlocks(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.QuoteBlock, ""})

	_, err := e.SetContent(blockIDs[0], "## not a heading", 0)
	require.NoError(t, err)

	b := snapshot(t, e).Blocks[0]
	assert.Equal(t, models.QuoteBlock, b.Type)
	assert.Equal(t, "## not a heading", b.Content)
}

func TestSetContentRejectsBlocksWithoutText(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, blockSeed{models.EquationBlock, ""})

	_, err := e.SetContent(blockIDs[0], "x", 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestIDsStableAcrossEdits(t *testing.T) {
	e, _, _, blockIDs := loadSeeded(t, text("one"), text("two"))

	_, err := e.SetContent(blockIDs[0], "one!", 4)
	require.NoError(t, err)
	_, err = e.ChangeType(blockIDs[0], models.QuoteBlock)
	require.NoError(t, err)
	_, err = e.SplitAtCaret(blockIDs[0], 2)
	require.NoError(t, err)

	got := ids(t, e)
	require.Len(t, got, 3)
	assert.Equal(t, blockIDs[0], got[0])
	assert.Equal(t, blockIDs[1], got[2])
}
