package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/engine"
	"github.com/versecast/versecast/internal/http/api"
	"github.com/versecast/versecast/internal/http/api/control/packets"
	"github.com/versecast/versecast/internal/model"
	"github.com/versecast/versecast/internal/playlist"
)

type PlaylistController struct {
	engine *engine.Engine
}

func newPlaylistController(eng *engine.Engine) *PlaylistController {
	return &PlaylistController{engine: eng}
}

// PlaylistModule mounts the session, activation and navigation endpoints.
func PlaylistModule(eng *engine.Engine) api.Module {
	ctl := newPlaylistController(eng)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlist", ctl.snapshot)
		c.POST("/playlist", ctl.load)
		c.DELETE("/playlist", ctl.close)
		c.PUT("/playlist/saved", ctl.markSaved)

		c.POST("/playlist/active", ctl.setActiveItem)
		c.PUT("/playlist/active/slide", ctl.setActiveSlide)
		c.POST("/playlist/navigate/item", ctl.navigateItem)
		c.POST("/playlist/navigate/slide", ctl.navigateSlide)
		c.PUT("/playlist/visibility", ctl.setVisibility)
	})
}

// mapEngineError converts typed playlist failures to protocol responses.
// Index errors and rejected targets never mutated state, so clients receive
// the reason and no broadcast follows.
func mapEngineError(err error) *api.Error {
	var indexErr *model.ErrIndexOutOfRange
	switch {
	case errors.As(err, &indexErr):
		return &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, playlist.ErrTypeMismatch):
		return &api.Error{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, playlist.ErrNotDisplayable):
		return &api.Error{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, playlist.ErrNoDisplayable):
		return &api.Error{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, playlist.ErrNoActiveItem):
		return &api.Error{Code: http.StatusConflict, Message: err.Error()}
	default:
		return &api.Error{Code: http.StatusInternalServerError, Message: err.Error()}
	}
}

func (p *PlaylistController) snapshot(ctx *gin.Context) (any, *api.Error) {
	return p.engine.Snapshot(), nil
}

func (p *PlaylistController) load(ctx *gin.Context) (any, *api.Error) {
	var req packets.LoadPlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("[playlist] load: bad request")
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := p.engine.LoadPlaylist(req.Caption, req.Items); err != nil {
		log.Error().Err(err).Msg("[playlist] load failed")
		return nil, mapEngineError(err)
	}
	return p.engine.Snapshot(), nil
}

func (p *PlaylistController) close(ctx *gin.Context) (any, *api.Error) {
	if err := p.engine.ClosePlaylist(); err != nil {
		log.Error().Err(err).Msg("[playlist] close failed")
		return nil, mapEngineError(err)
	}
	return nil, nil
}

// markSaved is called after the client wrote the session file on its side.
func (p *PlaylistController) markSaved(ctx *gin.Context) (any, *api.Error) {
	var req packets.MarkSavedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	p.engine.MarkSaved(req.Caption)
	return nil, nil
}

func (p *PlaylistController) setActiveItem(ctx *gin.Context) (any, *api.Error) {
	var req packets.SetActiveItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := p.engine.SetActiveItem(*req.Item, req.Slide); err != nil {
		return nil, mapEngineError(err)
	}
	return p.engine.ActiveItemSlide(), nil
}

func (p *PlaylistController) setActiveSlide(ctx *gin.Context) (any, *api.Error) {
	var req packets.SetActiveSlideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := p.engine.SetActiveSlide(*req.Slide); err != nil {
		return nil, mapEngineError(err)
	}
	return p.engine.ActiveItemSlide(), nil
}

func (p *PlaylistController) navigateItem(ctx *gin.Context) (any, *api.Error) {
	var req packets.NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := p.engine.NavigateItem(req.Steps); err != nil {
		return nil, mapEngineError(err)
	}
	return p.engine.ActiveItemSlide(), nil
}

func (p *PlaylistController) navigateSlide(ctx *gin.Context) (any, *api.Error) {
	var req packets.NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	itemChanged, err := p.engine.NavigateSlide(req.Steps)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return packets.NavigateSlideResponse{ItemChanged: itemChanged}, nil
}

func (p *PlaylistController) setVisibility(ctx *gin.Context) (any, *api.Error) {
	var req packets.VisibilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	p.engine.SetVisibility(*req.Visible)
	return nil, nil
}
