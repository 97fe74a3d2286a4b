package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"owlistic-notes/blocknotes/editor"
	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/services"
)

type insertRequest struct {
	AfterID *uuid.UUID `json:"after_id"`
	Type    string     `json:"type"`
	Content string     `json:"content"`
}

// splitRequest carries either a caret offset or the two halves of the
// block's markup as cut by the host surface.
type splitRequest struct {
	Caret  *int    `json:"caret"`
	Before *string `json:"before"`
	After  *string `json:"after"`
}

type typeRequest struct {
	Type string `json:"type" binding:"required"`
}

type contentRequest struct {
	Content string `json:"content"`
	Caret   int    `json:"caret"`
}

type moveRequest struct {
	TargetID uuid.UUID `json:"target_id" binding:"required"`
}

type fileRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Data string `json:"data"`
}

// payloadRequest sets the type-specific fields of a block. Exactly one
// field is expected per request.
type payloadRequest struct {
	Checked   *bool                `json:"checked"`
	Collapsed *bool                `json:"collapsed"`
	Children  *string              `json:"children"`
	Bookmark  *editor.BookmarkMeta `json:"bookmark"`
	VideoURL  *string              `json:"video_url"`
	File      *fileRequest         `json:"file"`
	Equation  *string              `json:"equation"`
	ImageURL  *string              `json:"image_url"`
	Icon      *string              `json:"icon"`
}

type cellRequest struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

type blockHandler func(c *gin.Context, engine *editor.Engine, blockID uuid.UUID) (editor.Focus, error)

func RegisterEditorRoutes(group *gin.RouterGroup, editors *services.EditorService) {
	group.POST("/notes/:id/blocks", func(c *gin.Context) { InsertBlock(c, editors) })

	blocks := group.Group("/notes/:id/blocks/:blockId")
	blocks.POST("/split", withBlock(editors, splitBlock))
	blocks.POST("/backspace", withBlock(editors, backspaceBlock))
	blocks.POST("/delete-forward", withBlock(editors, deleteForward))
	blocks.PUT("/type", withBlock(editors, changeType))
	blocks.PUT("/content", withBlock(editors, setContent))
	blocks.POST("/move", withBlock(editors, moveBlock))
	blocks.PATCH("", withBlock(editors, patchPayload))
	blocks.DELETE("", withBlock(editors, deleteBlock))

	blocks.POST("/rows", withBlock(editors, tableCall((*editor.Engine).AddRow)))
	blocks.DELETE("/rows", withBlock(editors, tableCall((*editor.Engine).RemoveRow)))
	blocks.POST("/columns", withBlock(editors, tableCall((*editor.Engine).AddColumn)))
	blocks.DELETE("/columns", withBlock(editors, tableCall((*editor.Engine).RemoveColumn)))
	blocks.PUT("/cells", withBlock(editors, setCell))
}

// respond reports the document after an operation. Rejected transitions are
// not request errors: the document is unchanged and applied is false.
func respond(c *gin.Context, engine *editor.Engine, focus editor.Focus, opErr error) {
	if opErr != nil && !errors.Is(opErr, editor.ErrInvalidTransition) && !errors.Is(opErr, editor.ErrDanglingReference) {
		abortWithError(c, opErr)
		return
	}
	snap, err := engine.Snapshot()
	if err != nil {
		abortWithError(c, err)
		return
	}
	body := gin.H{"applied": opErr == nil, "focus": focus, "snapshot": snap}
	if opErr != nil {
		body["focus"] = snap.Focus
		body["reason"] = opErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

func InsertBlock(c *gin.Context, editors *services.EditorService) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	blockType := models.TextBlock
	if req.Type != "" {
		parsed, err := models.ParseBlockType(req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		blockType = parsed
	}
	engine, err := editors.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	focus, err := engine.InsertAfter(req.AfterID, blockType, req.Content)
	respond(c, engine, focus, err)
}

func withBlock(editors *services.EditorService, handle blockHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID, err := uuid.Parse(c.Param("blockId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid block id"})
			return
		}
		engine, err := editors.Open(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		focus, err := handle(c, engine, blockID)
		if c.IsAborted() {
			return
		}
		respond(c, engine, focus, err)
	}
}

// bind parses the request body, answering 400 when it is malformed.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func splitBlock(c *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	var req splitRequest
	if !bind(c, &req) {
		return editor.Focus{}, nil
	}
	switch {
	case req.Before != nil || req.After != nil:
		var before, after string
		if req.Before != nil {
			before = *req.Before
		}
		if req.After != nil {
			after = *req.After
		}
		return engine.SplitAtCursor(id, before, after)
	case req.Caret != nil:
		return engine.SplitAtCaret(id, *req.Caret)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "caret or before/after required"})
		return editor.Focus{}, nil
	}
}

func backspaceBlock(_ *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	return engine.BackspaceAtStart(id)
}

func deleteForward(_ *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	return engine.DeleteAtEnd(id)
}

func changeType(c *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	var req typeRequest
	if !bind(c, &req) {
		return editor.Focus{}, nil
	}
	blockType, err := models.ParseBlockType(req.Type)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return editor.Focus{}, nil
	}
	return engine.ChangeType(id, blockType)
}

func setContent(c *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	var req contentRequest
	if !bind(c, &req) {
		return editor.Focus{}, nil
	}
	return engine.SetContent(id, req.Content, req.Caret)
}

func moveBlock(c *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	var req moveRequest
	if !bind(c, &req) {
		return editor.Focus{}, nil
	}
	if err := engine.Reorder(id, req.TargetID); err != nil {
		return editor.Focus{}, err
	}
	return engine.Focus(), nil
}

func deleteBlock(_ *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	return engine.DeleteBlock(id)
}

func patchPayload(c *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	var req payloadRequest
	if !bind(c, &req) {
		return editor.Focus{}, nil
	}
	switch {
	case req.Checked != nil:
		return engine.SetChecked(id, *req.Checked)
	case req.Collapsed != nil:
		return engine.SetCollapsed(id, *req.Collapsed)
	case req.Children != nil:
		return engine.SetChildren(id, *req.Children)
	case req.Bookmark != nil:
		return engine.CommitBookmark(id, *req.Bookmark)
	case req.VideoURL != nil:
		return engine.CommitVideo(id, *req.VideoURL)
	case req.File != nil:
		return engine.AttachFile(id, req.File.Name, req.File.Size, req.File.Data)
	case req.Equation != nil:
		return engine.SetEquation(id, *req.Equation)
	case req.ImageURL != nil:
		return engine.SetImage(id, *req.ImageURL)
	case req.Icon != nil:
		return engine.SetIcon(id, *req.Icon)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no payload field given"})
		return editor.Focus{}, nil
	}
}

func tableCall(op func(*editor.Engine, uuid.UUID) (editor.Focus, error)) blockHandler {
	return func(_ *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
		return op(engine, id)
	}
}

func setCell(c *gin.Context, engine *editor.Engine, id uuid.UUID) (editor.Focus, error) {
	var req cellRequest
	if !bind(c, &req) {
		return editor.Focus{}, nil
	}
	return engine.SetTableCell(id, req.Row, req.Col, req.Value)
}
