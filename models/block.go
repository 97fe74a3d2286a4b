package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BlockType string

const (
	TextBlock     BlockType = "text"
	Heading1Block BlockType = "h1"
	Heading2Block BlockType = "h2"
	Heading3Block BlockType = "h3"
	BulletBlock   BlockType = "bullet"
	NumberedBlock BlockType = "numbered"
	TodoBlock     BlockType = "todo"
	ToggleBlock   BlockType = "toggle"
	QuoteBlock    BlockType = "quote"
	CodeBlock     BlockType = "code"
	DividerBlock  BlockType = "divider"
	CalloutBlock  BlockType = "callout"
	ImageBlock    BlockType = "image"
	TableBlock    BlockType = "table"
	BookmarkBlock BlockType = "bookmark"
	VideoBlock    BlockType = "video"
	FileBlock     BlockType = "file"
	EquationBlock BlockType = "equation"
)

// TableGrid is a table's cell matrix; row 0 is the header row.
type TableGrid [][]string

// NewTableGrid builds a rows x cols grid with "Header N" placeholders in
// the header row and empty body cells.
func NewTableGrid(rows, cols int) TableGrid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	grid := make(TableGrid, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		if r == 0 {
			for c := range grid[r] {
				grid[r][c] = HeaderPlaceholder(c)
			}
		}
	}
	return grid
}

// HeaderPlaceholder is the label of a fresh header cell at column index col.
func HeaderPlaceholder(col int) string {
	return fmt.Sprintf("Header %d", col+1)
}

func (g TableGrid) Clone() TableGrid {
	if g == nil {
		return nil
	}
	out := make(TableGrid, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Value implements the driver.Valuer interface for JSON text storage
func (g TableGrid) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	b, err := json.Marshal([][]string(g))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (g *TableGrid) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*g = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	var grid [][]string
	if err := json.Unmarshal(raw, &grid); err != nil {
		return err
	}
	*g = grid
	return nil
}

// Payload holds the type-specific fields of a block. Only the fields named
// by the type's registry row are meaningful; the rest stay zero.
type Payload struct {
	Checked     bool      `json:"checked,omitempty"`
	Collapsed   bool      `json:"collapsed,omitempty"`
	Children    string    `json:"children,omitempty"`
	Rows        int       `json:"rows,omitempty"`
	Cols        int       `json:"cols,omitempty"`
	TableData   TableGrid `json:"table_data,omitempty"`
	URL         string    `json:"url,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Favicon     string    `json:"favicon,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	FileData    string    `json:"file_data,omitempty"`
	Equation    string    `json:"equation,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Icon        string    `json:"icon,omitempty"`
}

func (p Payload) clone() Payload {
	p.TableData = p.TableData.Clone()
	return p
}

// Block is one typed content unit of a note
type Block struct {
	ID        uuid.UUID `json:"id"`
	NoteID    uuid.UUID `json:"note_id"`
	Type      BlockType `json:"type"`
	Content   string    `json:"content"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Payload
}

// NewBlock builds a block carrying the default payload of its type.
// Unknown types fall back to text.
func NewBlock(id, noteID uuid.UUID, blockType BlockType, content string, now time.Time) *Block {
	spec, ok := Spec(blockType)
	if !ok {
		spec = MustSpec(TextBlock)
	}
	if !spec.HoldsText {
		content = ""
	}
	return &Block{
		ID:        id,
		NoteID:    noteID,
		Type:      spec.Type,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		Payload:   spec.DefaultPayload(),
	}
}

func (b *Block) Clone() *Block {
	c := *b
	c.Payload = b.Payload.clone()
	return &c
}

// PlainText returns the registry projection of the block.
func (b *Block) PlainText() string {
	spec, ok := Spec(b.Type)
	if !ok {
		return ""
	}
	return spec.PlainText(b)
}

func (b *Block) IsAtomic() bool {
	spec, ok := Spec(b.Type)
	return ok && spec.Atomic
}

// Convert switches the block to another type in place, keeping the id and,
// when the target type holds text, the content. The payload is reset to the
// target type's defaults.
func (b *Block) Convert(blockType BlockType) error {
	spec, ok := Spec(blockType)
	if !ok {
		return fmt.Errorf("unknown block type %q", blockType)
	}
	if b.Type == blockType {
		return nil
	}
	// Hidden children of a collapsible block become part of the content of
	// a text type that cannot hold them.
	if current, ok := Spec(b.Type); ok && current.HasField(FieldChildren) && !spec.HasField(FieldChildren) && spec.HoldsText {
		b.Content = joinInline(b.Content, b.Children)
	}
	b.Type = blockType
	b.Payload = spec.DefaultPayload()
	if !spec.HoldsText {
		b.Content = ""
	}
	return nil
}

func joinInline(content, children string) string {
	switch {
	case children == "":
		return content
	case content == "":
		return children
	default:
		return content + " " + children
	}
}
