// Package document holds the ordered block sequence of one note.
package document

import (
	"github.com/google/uuid"

	"owlistic-notes/blocknotes/models"
)

// Sequence is the ordered, id-indexed list of a note's blocks. It is not
// safe for concurrent use; the editor engine serialises access.
type Sequence struct {
	blocks []*models.Block
	index  map[uuid.UUID]int
}

// New builds a sequence from blocks in the given order. Blocks repeating an
// earlier id are dropped.
func New(blocks []*models.Block) *Sequence {
	s := &Sequence{index: make(map[uuid.UUID]int, len(blocks))}
	for _, b := range blocks {
		if b == nil {
			continue
		}
		if _, dup := s.index[b.ID]; dup {
			continue
		}
		s.index[b.ID] = len(s.blocks)
		s.blocks = append(s.blocks, b)
	}
	return s
}

func (s *Sequence) Len() int { return len(s.blocks) }

// Blocks returns the blocks in order. The slice is a copy; the blocks are not.
func (s *Sequence) Blocks() []*models.Block {
	return append([]*models.Block(nil), s.blocks...)
}

func (s *Sequence) At(i int) *models.Block {
	if i < 0 || i >= len(s.blocks) {
		return nil
	}
	return s.blocks[i]
}

func (s *Sequence) First() *models.Block { return s.At(0) }

func (s *Sequence) Last() *models.Block { return s.At(len(s.blocks) - 1) }

func (s *Sequence) IndexOf(id uuid.UUID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

func (s *Sequence) Get(id uuid.UUID) (*models.Block, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.blocks[i], true
}

// Prev returns the block before id, or nil.
func (s *Sequence) Prev(id uuid.UUID) *models.Block {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.At(i - 1)
}

// Next returns the block after id, or nil.
func (s *Sequence) Next(id uuid.UUID) *models.Block {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.At(i + 1)
}

// Insert places b at position i, clamped to [0, Len]. It reports false and
// leaves the sequence unchanged when b's id is already present.
func (s *Sequence) Insert(i int, b *models.Block) bool {
	if _, dup := s.index[b.ID]; dup {
		return false
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.blocks) {
		i = len(s.blocks)
	}
	s.blocks = append(s.blocks, nil)
	copy(s.blocks[i+1:], s.blocks[i:])
	s.blocks[i] = b
	s.reindex(i)
	return true
}

func (s *Sequence) Append(b *models.Block) bool {
	return s.Insert(len(s.blocks), b)
}

// InsertAfter places b right after the block with id. When id is unknown b
// is appended and found is false.
func (s *Sequence) InsertAfter(id uuid.UUID, b *models.Block) (inserted, found bool) {
	i, found := s.index[id]
	if !found {
		return s.Append(b), false
	}
	return s.Insert(i+1, b), true
}

// Remove drops the block with id and returns it.
func (s *Sequence) Remove(id uuid.UUID) (*models.Block, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	b := s.blocks[i]
	copy(s.blocks[i:], s.blocks[i+1:])
	s.blocks[len(s.blocks)-1] = nil
	s.blocks = s.blocks[:len(s.blocks)-1]
	delete(s.index, id)
	s.reindex(i)
	return b, true
}

// MoveBefore removes dragged and reinserts it immediately before target's
// current position. Moving a block onto itself or referencing an unknown id
// changes nothing and reports false.
func (s *Sequence) MoveBefore(dragged, target uuid.UUID) bool {
	if dragged == target {
		return false
	}
	if _, ok := s.index[target]; !ok {
		return false
	}
	b, ok := s.Remove(dragged)
	if !ok {
		return false
	}
	return s.Insert(s.index[target], b)
}

// Renumber assigns the dense order 0..N-1 in sequence order.
func (s *Sequence) Renumber() {
	for i, b := range s.blocks {
		b.Order = i
	}
}

func (s *Sequence) reindex(from int) {
	for i := from; i < len(s.blocks); i++ {
		s.index[s.blocks[i].ID] = i
	}
}
