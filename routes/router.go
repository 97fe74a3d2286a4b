package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"owlistic-notes/blocknotes/config"
	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/logging"
	"owlistic-notes/blocknotes/middleware"
	"owlistic-notes/blocknotes/services"
)

// NewRouter wires every HTTP route of the server.
func NewRouter(cfg config.Config, db *database.Database, noteService services.NoteServiceInterface, editors *services.EditorService, hub *services.StatusHub) *gin.Engine {
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logging.Get()))
	router.Use(middleware.CORSMiddleware(cfg.Origins()))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	RegisterNoteRoutes(api, db, noteService, editors)
	RegisterEditorRoutes(api, editors)
	RegisterWebSocketRoutes(router, hub)
	if cfg.Development() {
		SetupDebugRoutes(router, editors, hub)
	}
	return router
}
