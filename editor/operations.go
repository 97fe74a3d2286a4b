package editor

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/richtext"
)

func endOf(b *models.Block) Focus {
	return Focus{BlockID: b.ID, Caret: richtext.Len(b.Content)}
}

func startOf(b *models.Block) Focus {
	return Focus{BlockID: b.ID}
}

func specFor(t models.BlockType) (models.TypeSpec, error) {
	spec, ok := models.Spec(t)
	if !ok {
		return models.TypeSpec{}, fmt.Errorf("%w: %q", ErrUnknownBlockType, t)
	}
	return spec, nil
}

// InsertAfter creates a block right after afterID, or at the end when
// afterID is nil or no longer in the document.
func (e *Engine) InsertAfter(afterID *uuid.UUID, blockType models.BlockType, content string) (Focus, error) {
	return e.mutate("insert_after", func() (Focus, error) {
		if _, err := specFor(blockType); err != nil {
			return Focus{}, err
		}
		b := e.newBlockLocked(blockType, content)
		if afterID == nil {
			e.seq.Append(b)
		} else if _, found := e.seq.InsertAfter(*afterID, b); !found {
			e.logger.Debug("insert target missing, appending",
				zap.String("note_id", e.note.ID.String()),
				zap.String("block_id", afterID.String()))
		}
		e.autoformatLocked(b)
		return endOf(b), nil
	})
}

// SplitAtCursor truncates the block to before and continues with after in a
// new block. The new block keeps a list type only when the original block
// was not empty, so Enter on an empty list item leaves the list.
func (e *Engine) SplitAtCursor(id uuid.UUID, before, after string) (Focus, error) {
	return e.mutate("split", func() (Focus, error) {
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		spec := models.MustSpec(b.Type)
		if b.IsAtomic() {
			return Focus{}, fmt.Errorf("%w: cannot split %s block", ErrInvalidTransition, b.Type)
		}

		rightType := models.TextBlock
		if spec.InheritsAcrossSplit && b.PlainText() != "" {
			rightType = b.Type
		}
		right := e.newBlockLocked(rightType, after)

		if spec.HoldsText {
			b.Content = richtext.Sanitize(before)
			e.touch(b)
		}
		e.seq.InsertAfter(b.ID, right)
		e.autoformatLocked(b)
		e.autoformatLocked(right)
		return startOf(right), nil
	})
}

// SplitAtCaret splits at a caret offset into the block's plain text.
func (e *Engine) SplitAtCaret(id uuid.UUID, caret int) (Focus, error) {
	e.mu.Lock()
	if e.note == nil {
		e.mu.Unlock()
		return Focus{}, ErrNoDocument
	}
	b, ok := e.seq.Get(id)
	if !ok {
		e.mu.Unlock()
		return Focus{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	caret = clampCaret(caret, richtext.Len(b.Content))
	before, after := richtext.SplitAt(b.Content, caret)
	e.mu.Unlock()

	return e.SplitAtCursor(id, before, after)
}

func clampCaret(caret, length int) int {
	if caret < 0 {
		return 0
	}
	if caret > length {
		return length
	}
	return caret
}

// BackspaceAtStart handles Backspace with the caret at offset 0. A typed
// block first reverts to text; a text block merges into its predecessor.
func (e *Engine) BackspaceAtStart(id uuid.UUID) (Focus, error) {
	return e.mutate("backspace", func() (Focus, error) {
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		if b.Type != models.TextBlock {
			if err := b.Convert(models.TextBlock); err != nil {
				return Focus{}, err
			}
			e.touch(b)
			return startOf(b), nil
		}

		prev := e.seq.Prev(id)
		switch {
		case prev == nil:
			return Focus{}, fmt.Errorf("%w: no previous block", ErrInvalidTransition)
		case prev.IsAtomic():
			return Focus{}, fmt.Errorf("%w: previous block is %s", ErrInvalidTransition, prev.Type)
		case !models.MustSpec(prev.Type).HoldsText:
			return Focus{}, fmt.Errorf("%w: previous block %s holds no text", ErrInvalidTransition, prev.Type)
		}

		caret := richtext.Len(prev.Content)
		prev.Content = richtext.Sanitize(prev.Content + b.Content)
		e.touch(prev)
		e.removeLocked(id)
		return Focus{BlockID: prev.ID, Caret: caret}, nil
	})
}

// DeleteAtEnd handles Delete with the caret at the end of the block: the
// next block's content is pulled into this one.
func (e *Engine) DeleteAtEnd(id uuid.UUID) (Focus, error) {
	return e.mutate("delete_forward", func() (Focus, error) {
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		if b.IsAtomic() || !models.MustSpec(b.Type).HoldsText {
			return Focus{}, fmt.Errorf("%w: block %s holds no text", ErrInvalidTransition, b.Type)
		}
		next := e.seq.Next(id)
		switch {
		case next == nil:
			return Focus{}, fmt.Errorf("%w: no next block", ErrInvalidTransition)
		case next.IsAtomic():
			return Focus{}, fmt.Errorf("%w: next block is %s", ErrInvalidTransition, next.Type)
		case !models.MustSpec(next.Type).HoldsText:
			return Focus{}, fmt.Errorf("%w: next block %s holds no text", ErrInvalidTransition, next.Type)
		}

		caret := richtext.Len(b.Content)
		b.Content = richtext.Sanitize(b.Content + next.Content)
		e.touch(b)
		e.removeLocked(next.ID)
		return Focus{BlockID: b.ID, Caret: caret}, nil
	})
}

// ChangeType converts a block in place. Content survives when the new type
// holds text; the payload is reset to the new type's defaults.
func (e *Engine) ChangeType(id uuid.UUID, blockType models.BlockType) (Focus, error) {
	return e.mutate("change_type", func() (Focus, error) {
		if _, err := specFor(blockType); err != nil {
			return Focus{}, err
		}
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		if b.Type == blockType {
			return Focus{}, errUnchanged
		}
		if err := b.Convert(blockType); err != nil {
			return Focus{}, err
		}
		e.touch(b)
		return endOf(b), nil
	})
}

// Reorder moves dragged to sit immediately before target.
func (e *Engine) Reorder(draggedID, targetID uuid.UUID) error {
	_, err := e.mutate("reorder", func() (Focus, error) {
		if draggedID == targetID {
			return Focus{}, errUnchanged
		}
		for _, id := range []uuid.UUID{draggedID, targetID} {
			if _, ok := e.seq.Get(id); !ok {
				return Focus{}, fmt.Errorf("%w: %s", ErrDanglingReference, id)
			}
		}
		e.seq.MoveBefore(draggedID, targetID)
		b, _ := e.seq.Get(draggedID)
		b.UpdatedAt = e.now()
		return e.focus, nil
	})
	return err
}

// DeleteBlock removes a block. The last remaining block is reset to an
// empty text block instead, keeping its id.
func (e *Engine) DeleteBlock(id uuid.UUID) (Focus, error) {
	return e.mutate("delete_block", func() (Focus, error) {
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		if e.seq.Len() == 1 {
			b.Type = models.TextBlock
			b.Content = ""
			b.Payload = models.MustSpec(models.TextBlock).DefaultPayload()
			e.touch(b)
			return startOf(b), nil
		}

		prev, next := e.seq.Prev(id), e.seq.Next(id)
		e.removeLocked(id)
		if prev != nil {
			return endOf(prev), nil
		}
		return startOf(next), nil
	})
}

// SetContent replaces a block's content with sanitized markup. A text block
// whose content now starts with a markdown shortcut is converted.
func (e *Engine) SetContent(id uuid.UUID, markup string, caret int) (Focus, error) {
	return e.mutate("set_content", func() (Focus, error) {
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		if !models.MustSpec(b.Type).HoldsText {
			return Focus{}, fmt.Errorf("%w: %s block holds no text", ErrInvalidTransition, b.Type)
		}
		b.Content = richtext.Sanitize(markup)
		e.touch(b)
		caret = clampCaret(caret, richtext.Len(b.Content))
		if strip, ok := e.autoformatLocked(b); ok {
			caret = clampCaret(caret-strip, richtext.Len(b.Content))
		}
		return Focus{BlockID: b.ID, Caret: caret}, nil
	})
}
