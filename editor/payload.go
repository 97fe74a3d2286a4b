package editor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/richtext"
)

// BookmarkMeta is the link preview committed into a bookmark block.
type BookmarkMeta struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`
}

func (e *Engine) payloadOp(op string, id uuid.UUID, want models.BlockType, fn func(b *models.Block) error) (Focus, error) {
	return e.mutate(op, func() (Focus, error) {
		b, err := e.blockLocked(id)
		if err != nil {
			return Focus{}, err
		}
		if b.Type != want {
			return Focus{}, fmt.Errorf("%w: %s block expected, got %s", ErrInvalidTransition, want, b.Type)
		}
		if err := fn(b); err != nil {
			return Focus{}, err
		}
		e.touch(b)
		return endOf(b), nil
	})
}

func validURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an http(s) url", ErrInvalidTransition, raw)
	}
	return raw, nil
}

func (e *Engine) SetChecked(id uuid.UUID, checked bool) (Focus, error) {
	return e.payloadOp("set_checked", id, models.TodoBlock, func(b *models.Block) error {
		b.Checked = checked
		return nil
	})
}

func (e *Engine) SetCollapsed(id uuid.UUID, collapsed bool) (Focus, error) {
	return e.payloadOp("set_collapsed", id, models.ToggleBlock, func(b *models.Block) error {
		b.Collapsed = collapsed
		return nil
	})
}

// SetChildren replaces the hidden body of a toggle.
func (e *Engine) SetChildren(id uuid.UUID, markup string) (Focus, error) {
	return e.payloadOp("set_children", id, models.ToggleBlock, func(b *models.Block) error {
		b.Children = richtext.Sanitize(markup)
		return nil
	})
}

// CommitBookmark stores the fetched preview of a link. Until committed a
// bookmark only shows its URL input.
func (e *Engine) CommitBookmark(id uuid.UUID, meta BookmarkMeta) (Focus, error) {
	return e.payloadOp("commit_bookmark", id, models.BookmarkBlock, func(b *models.Block) error {
		link, err := validURL(meta.URL)
		if err != nil {
			return err
		}
		b.URL = link
		b.Title = strings.TrimSpace(meta.Title)
		b.Description = strings.TrimSpace(meta.Description)
		b.Favicon = strings.TrimSpace(meta.Favicon)
		return nil
	})
}

func (e *Engine) CommitVideo(id uuid.UUID, videoURL string) (Focus, error) {
	return e.payloadOp("commit_video", id, models.VideoBlock, func(b *models.Block) error {
		link, err := validURL(videoURL)
		if err != nil {
			return err
		}
		b.VideoURL = link
		return nil
	})
}

// AttachFile records an uploaded file. ref is an opaque reference to the
// stored bytes; the engine never reads it.
func (e *Engine) AttachFile(id uuid.UUID, name string, size int64, ref string) (Focus, error) {
	return e.payloadOp("attach_file", id, models.FileBlock, func(b *models.Block) error {
		name = strings.TrimSpace(name)
		if name == "" || size < 0 {
			return fmt.Errorf("%w: file needs a name and a non-negative size", ErrInvalidTransition)
		}
		b.FileName = name
		b.FileSize = size
		b.FileData = ref
		return nil
	})
}

func (e *Engine) SetEquation(id uuid.UUID, source string) (Focus, error) {
	return e.payloadOp("set_equation", id, models.EquationBlock, func(b *models.Block) error {
		b.Equation = source
		return nil
	})
}

func (e *Engine) SetImage(id uuid.UUID, ref string) (Focus, error) {
	return e.payloadOp("set_image", id, models.ImageBlock, func(b *models.Block) error {
		b.ImageURL = strings.TrimSpace(ref)
		return nil
	})
}

// SetIcon changes a callout's icon; an empty icon restores the default.
func (e *Engine) SetIcon(id uuid.UUID, icon string) (Focus, error) {
	return e.payloadOp("set_icon", id, models.CalloutBlock, func(b *models.Block) error {
		icon = strings.TrimSpace(icon)
		if icon == "" {
			icon = models.DefaultCalloutIcon
		}
		b.Icon = icon
		return nil
	})
}
