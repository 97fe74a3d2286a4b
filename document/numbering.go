package document

import (
	"github.com/google/uuid"

	"owlistic-notes/blocknotes/models"
)

// Ordinals computes the display ordinal of every numbered block: one more
// than the run of numbered blocks immediately before it. Other blocks get 0.
func Ordinals(blocks []*models.Block) []int {
	out := make([]int, len(blocks))
	run := 0
	for i, b := range blocks {
		if b.Type != models.NumberedBlock {
			run = 0
			continue
		}
		run++
		out[i] = run
	}
	return out
}

// Ordinals keys the display ordinals of the sequence's numbered blocks by id.
func (s *Sequence) Ordinals() map[uuid.UUID]int {
	ordinals := Ordinals(s.blocks)
	out := make(map[uuid.UUID]int)
	for i, n := range ordinals {
		if n > 0 {
			out[s.blocks[i].ID] = n
		}
	}
	return out
}

// Ordinal returns the display ordinal of the block with id, or 0 when it is
// not a numbered block.
func (s *Sequence) Ordinal(id uuid.UUID) int {
	i, ok := s.index[id]
	if !ok || s.blocks[i].Type != models.NumberedBlock {
		return 0
	}
	n := 1
	for j := i - 1; j >= 0 && s.blocks[j].Type == models.NumberedBlock; j-- {
		n++
	}
	return n
}
