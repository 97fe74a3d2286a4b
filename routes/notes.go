package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/services"
)

type noteRequest struct {
	Name string `json:"name"`
}

func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface, editors *services.EditorService) {
	group.GET("/notes", func(c *gin.Context) { GetNotes(c, db, noteService) })
	group.POST("/notes", func(c *gin.Context) { CreateNote(c, db, noteService) })

	group.GET("/notes/:id", func(c *gin.Context) { OpenNote(c, editors) })
	group.GET("/notes/:id/text", func(c *gin.Context) { GetNoteText(c, editors) })
	group.PUT("/notes/:id/title", func(c *gin.Context) { RenameNote(c, db, noteService, editors) })
	group.POST("/notes/:id/flush", func(c *gin.Context) { FlushNote(c, editors) })
	group.POST("/notes/:id/close", func(c *gin.Context) { CloseNote(c, editors) })
	group.DELETE("/notes/:id", func(c *gin.Context) { DeleteNote(c, db, noteService, editors) })
}

func GetNotes(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	notes, err := noteService.ListNotes(db)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CreateNote accepts an empty body; the note is then named DefaultNoteName.
func CreateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	note, err := noteService.CreateNote(db, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// OpenNote loads the note into the editor, if needed, and returns the
// current document.
func OpenNote(c *gin.Context, editors *services.EditorService) {
	engine, err := editors.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	snap, err := engine.Snapshot()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func GetNoteText(c *gin.Context, editors *services.EditorService) {
	engine, err := editors.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	text, err := engine.PlainText()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// RenameNote goes through the editor when the note is open so the title is
// written with the next flush.
func RenameNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface, editors *services.EditorService) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if engine, err := editors.Engine(id); err == nil {
		if err := engine.SetTitle(req.Name); err != nil {
			abortWithError(c, err)
			return
		}
		snap, err := engine.Snapshot()
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap.Note)
		return
	}

	note, err := noteService.RenameNote(db, id, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func FlushNote(c *gin.Context, editors *services.EditorService) {
	engine, err := editors.Engine(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := engine.Flush(c.Request.Context()); err != nil {
		status, _ := engine.LastStatus()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "status": status})
		return
	}
	status, ok := engine.LastStatus()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": engine.Pending(), "status": status})
}

func CloseNote(c *gin.Context, editors *services.EditorService) {
	if err := editors.Close(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNote drops the open document without flushing it, then removes the
// note and all of its blocks.
func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface, editors *services.EditorService) {
	id := c.Param("id")
	err := editors.Delete(id, func() error {
		return noteService.DeleteNote(db, id)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
