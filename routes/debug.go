package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"owlistic-notes/blocknotes/services"
)

type openNoteInfo struct {
	NoteID  string      `json:"note_id"`
	Pending bool        `json:"pending"`
	Status  interface{} `json:"status,omitempty"`
}

// SetupDebugRoutes sets up routes for debugging
func SetupDebugRoutes(router *gin.Engine, editors *services.EditorService, hub *services.StatusHub) {
	debugGroup := router.Group("/api/v1/debug")
	{
		debugGroup.GET("/editors", func(c *gin.Context) {
			open := []openNoteInfo{}
			for _, id := range editors.OpenNotes() {
				engine, err := editors.Engine(id.String())
				if err != nil {
					continue
				}
				info := openNoteInfo{NoteID: id.String(), Pending: engine.Pending()}
				if status, ok := engine.LastStatus(); ok {
					info.Status = status
				}
				open = append(open, info)
			}

			c.JSON(http.StatusOK, gin.H{
				"open_notes": open,
				"clients":    hub.ClientCount(),
				"time":       time.Now(),
			})
		})
	}
}
