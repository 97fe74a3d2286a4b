package editor

import (
	"fmt"

	"github.com/google/uuid"

	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/richtext"
)

// tableOp runs fn against a copy of a table block's grid and stores the
// result. A missing grid is regenerated from the recorded rows x cols.
func (e *Engine) tableOp(op string, id uuid.UUID, fn func(grid models.TableGrid) (models.TableGrid, error)) (Focus, error) {
	return e.mutate(op, func() (Focus, error) {
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		if b.Type != models.TableBlock {
			return Focus{}, fmt.Errorf("%w: %s is not a table", ErrInvalidTransition, b.Type)
		}
		grid := b.TableData.Clone()
		if len(grid) == 0 {
			grid = models.NewTableGrid(b.Rows, b.Cols)
		}
		grid, err = fn(grid)
		if err != nil {
			return Focus{}, err
		}
		b.TableData = grid
		b.Rows = len(b.TableData)
		b.Cols = len(b.TableData[0])
		e.touch(b)
		return startOf(b), nil
	})
}

// AddRow appends a row of empty cells.
func (e *Engine) AddRow(id uuid.UUID) (Focus, error) {
	return e.tableOp("add_row", id, func(grid models.TableGrid) (models.TableGrid, error) {
		return append(grid, make([]string, len(grid[0]))), nil
	})
}

// RemoveRow drops the last row, never the only one.
func (e *Engine) RemoveRow(id uuid.UUID) (Focus, error) {
	return e.tableOp("remove_row", id, func(grid models.TableGrid) (models.TableGrid, error) {
		if len(grid) <= 1 {
			return nil, fmt.Errorf("%w: table needs at least one row", ErrInvalidTransition)
		}
		return grid[:len(grid)-1], nil
	})
}

// AddColumn appends a column. The header row gets a placeholder label.
func (e *Engine) AddColumn(id uuid.UUID) (Focus, error) {
	return e.tableOp("add_column", id, func(grid models.TableGrid) (models.TableGrid, error) {
		col := len(grid[0])
		for r := range grid {
			cell := ""
			if r == 0 {
				cell = models.HeaderPlaceholder(col)
			}
			grid[r] = append(grid[r], cell)
		}
		return grid, nil
	})
}

// RemoveColumn drops the last cell of every row, never the only column.
func (e *Engine) RemoveColumn(id uuid.UUID) (Focus, error) {
	return e.tableOp("remove_column", id, func(grid models.TableGrid) (models.TableGrid, error) {
		if len(grid[0]) <= 1 {
			return nil, fmt.Errorf("%w: table needs at least one column", ErrInvalidTransition)
		}
		for r := range grid {
			grid[r] = grid[r][:len(grid[r])-1]
		}
		return grid, nil
	})
}

func (e *Engine) SetTableCell(id uuid.UUID, row, col int, value string) (Focus, error) {
	return e.tableOp("set_table_cell", id, func(grid models.TableGrid) (models.TableGrid, error) {
		if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
			return nil, fmt.Errorf("%w: cell (%d, %d) outside %dx%d table",
				ErrInvalidTransition, row, col, len(grid), len(grid[0]))
		}
		grid[row][col] = richtext.PlainText(richtext.Sanitize(value))
		return grid, nil
	})
}
