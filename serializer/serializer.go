// Package serializer converts blocks to and from flat storage records.
package serializer

import (
	"fmt"
	"sort"

	"owlistic-notes/blocknotes/models"
)

// Mismatch reports a record field that was absent or unusable for the
// record's type and was replaced by the type's default.
type Mismatch struct {
	Record models.BlockRecord
	Field  models.PayloadField
	Reason string
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("block %s (%s): %s: %s", m.Record.ID, m.Record.Type, m.Field, m.Reason)
}

func ptr[T any](v T) *T { return &v }

// ToRecord flattens b, writing exactly the payload columns its type uses.
func ToRecord(b *models.Block) models.BlockRecord {
	r := models.BlockRecord{
		ID:        b.ID,
		NoteID:    b.NoteID,
		Type:      b.Type,
		Content:   b.Content,
		Order:     b.Order,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	spec, ok := models.Spec(b.Type)
	if !ok {
		return r
	}
	for _, f := range spec.Fields {
		switch f {
		case models.FieldChecked:
			r.Checked = ptr(b.Checked)
		case models.FieldCollapsed:
			r.Collapsed = ptr(b.Collapsed)
		case models.FieldChildren:
			r.Children = ptr(b.Children)
		case models.FieldRows:
			r.Rows = ptr(b.Rows)
		case models.FieldCols:
			r.Cols = ptr(b.Cols)
		case models.FieldTableData:
			grid := b.TableData.Clone()
			if grid == nil {
				grid = models.TableGrid{}
			}
			r.TableData = grid
		case models.FieldURL:
			r.URL = ptr(b.URL)
		case models.FieldTitle:
			r.Title = ptr(b.Title)
		case models.FieldDescription:
			r.Description = ptr(b.Description)
		case models.FieldFavicon:
			r.Favicon = ptr(b.Favicon)
		case models.FieldVideoURL:
			r.VideoURL = ptr(b.VideoURL)
		case models.FieldFileName:
			r.FileName = ptr(b.FileName)
		case models.FieldFileSize:
			r.FileSize = ptr(b.FileSize)
		case models.FieldFileData:
			r.FileData = ptr(b.FileData)
		case models.FieldEquation:
			r.Equation = ptr(b.Equation)
		case models.FieldImageURL:
			r.ImageURL = ptr(b.ImageURL)
		case models.FieldIcon:
			r.Icon = ptr(b.Icon)
		}
	}
	return r
}

// FromRecord restores a block. Fields the type expects but the record lacks
// take the type's default value and are reported as mismatches.
func FromRecord(r models.BlockRecord) (*models.Block, []Mismatch) {
	var mismatches []Mismatch
	spec, ok := models.Spec(r.Type)
	if !ok {
		mismatches = append(mismatches, Mismatch{Record: r, Field: "type", Reason: "unknown type, loaded as text"})
		spec = models.MustSpec(models.TextBlock)
	}

	b := &models.Block{
		ID:        r.ID,
		NoteID:    r.NoteID,
		Type:      spec.Type,
		Content:   r.Content,
		Order:     r.Order,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Payload:   spec.DefaultPayload(),
	}
	if !spec.HoldsText {
		b.Content = ""
	}
	missing := func(f models.PayloadField) {
		mismatches = append(mismatches, Mismatch{Record: r, Field: f, Reason: "missing, default applied"})
	}

	for _, f := range spec.Fields {
		switch f {
		case models.FieldChecked:
			restore(&b.Checked, r.Checked, f, missing)
		case models.FieldCollapsed:
			restore(&b.Collapsed, r.Collapsed, f, missing)
		case models.FieldChildren:
			restore(&b.Children, r.Children, f, missing)
		case models.FieldRows:
			restore(&b.Rows, r.Rows, f, missing)
		case models.FieldCols:
			restore(&b.Cols, r.Cols, f, missing)
		case models.FieldTableData:
			// handled below once rows and cols are known
		case models.FieldURL:
			restore(&b.URL, r.URL, f, missing)
		case models.FieldTitle:
			restore(&b.Title, r.Title, f, missing)
		case models.FieldDescription:
			restore(&b.Description, r.Description, f, missing)
		case models.FieldFavicon:
			restore(&b.Favicon, r.Favicon, f, missing)
		case models.FieldVideoURL:
			restore(&b.VideoURL, r.VideoURL, f, missing)
		case models.FieldFileName:
			restore(&b.FileName, r.FileName, f, missing)
		case models.FieldFileSize:
			restore(&b.FileSize, r.FileSize, f, missing)
		case models.FieldFileData:
			restore(&b.FileData, r.FileData, f, missing)
		case models.FieldEquation:
			restore(&b.Equation, r.Equation, f, missing)
		case models.FieldImageURL:
			restore(&b.ImageURL, r.ImageURL, f, missing)
		case models.FieldIcon:
			restore(&b.Icon, r.Icon, f, missing)
		}
	}

	if spec.HasField(models.FieldTableData) {
		restoreTable(b, r, func(reason string) {
			mismatches = append(mismatches, Mismatch{Record: r, Field: models.FieldTableData, Reason: reason})
		})
	}
	return b, mismatches
}

func restore[T any](dst *T, src *T, f models.PayloadField, missing func(models.PayloadField)) {
	if src == nil {
		missing(f)
		return
	}
	*dst = *src
}

// restoreTable keeps the grid consistent with rows and cols. A stored grid
// wins over disagreeing counts; a missing grid is regenerated blank.
func restoreTable(b *models.Block, r models.BlockRecord, report func(string)) {
	if b.Rows < 1 {
		b.Rows = 1
	}
	if b.Cols < 1 {
		b.Cols = 1
	}
	grid := r.TableData
	if grid == nil {
		report("missing, blank grid generated")
		b.TableData = models.NewTableGrid(b.Rows, b.Cols)
		return
	}
	if len(grid) == 0 {
		report("empty, blank grid generated")
		b.TableData = models.NewTableGrid(b.Rows, b.Cols)
		return
	}
	grid = grid.Clone()
	cols := 0
	for _, row := range grid {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		cols = 1
	}
	for i := range grid {
		for len(grid[i]) < cols {
			grid[i] = append(grid[i], "")
		}
	}
	if len(grid) != b.Rows || cols != b.Cols {
		report(fmt.Sprintf("grid is %dx%d, recorded %dx%d", len(grid), cols, b.Rows, b.Cols))
	}
	b.Rows = len(grid)
	b.Cols = cols
	b.TableData = grid
}

func Serialize(blocks []*models.Block) []models.BlockRecord {
	out := make([]models.BlockRecord, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, ToRecord(b))
	}
	return out
}

// Deserialize restores records in storage order: by order, then creation
// time. The orders themselves are not densified here.
func Deserialize(records []models.BlockRecord) ([]*models.Block, []Mismatch) {
	sorted := append([]models.BlockRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var mismatches []Mismatch
	blocks := make([]*models.Block, 0, len(sorted))
	for _, r := range sorted {
		b, m := FromRecord(r)
		blocks = append(blocks, b)
		mismatches = append(mismatches, m...)
	}
	return blocks, mismatches
}
