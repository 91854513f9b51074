package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/engine"
	"github.com/versecast/versecast/internal/http/api"
	"github.com/versecast/versecast/internal/http/api/control/packets"
	"github.com/versecast/versecast/internal/library"
)

// RendererModule mounts the render-target status endpoint.
func RendererModule(eng *engine.Engine) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/renderers", func(ctx *gin.Context) (any, *api.Error) {
			return eng.RendererStatuses(), nil
		})
	})
}

// LibraryModule mounts the song/psalm listing endpoints.
func LibraryModule(store library.Store) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/library/songs", func(ctx *gin.Context) (any, *api.Error) {
			songs, err := store.ListSongs()
			if err != nil {
				log.Error().Err(err).Msg("[library] list songs failed")
				return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list songs"}
			}
			return packets.LibraryResponse{Songs: songs}, nil
		})
		c.GET("/library/psalms", func(ctx *gin.Context) (any, *api.Error) {
			psalms, err := store.ListPsalms()
			if err != nil {
				log.Error().Err(err).Msg("[library] list psalms failed")
				return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list psalms"}
			}
			return packets.LibraryResponse{Psalms: psalms}, nil
		})
	})
}
