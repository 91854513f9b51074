package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/versecast/versecast/internal/engine"
	"github.com/versecast/versecast/internal/http/api"
	controlapi "github.com/versecast/versecast/internal/http/api/control/endpoints"
	"github.com/versecast/versecast/internal/hub"
	"github.com/versecast/versecast/internal/library"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, eng *engine.Engine, store library.Store, h *hub.Hub) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/control",
	},
		controlapi.PlaylistModule(eng),
		controlapi.ItemModule(eng),
		controlapi.RendererModule(eng),
		controlapi.LibraryModule(store),
	)

	// control clients mirror state over this socket
	r.GET("/api/control/ws", func(c *gin.Context) {
		h.Serve(c.Writer, c.Request)
	})
}
