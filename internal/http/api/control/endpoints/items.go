package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/engine"
	"github.com/versecast/versecast/internal/http/api"
	"github.com/versecast/versecast/internal/http/api/control/packets"
)

type ItemController struct {
	engine *engine.Engine
}

func newItemController(eng *engine.Engine) *ItemController {
	return &ItemController{engine: eng}
}

// ItemModule mounts the playlist mutation endpoints.
func ItemModule(eng *engine.Engine) api.Module {
	ctl := newItemController(eng)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/playlist/items", ctl.addItem)
		c.PUT("/playlist/items/:position", ctl.updateItem)
		c.DELETE("/playlist/items/:position", ctl.deleteItem)
		c.POST("/playlist/items/move", ctl.moveItem)
		c.POST("/playlist/items/:position/slides", ctl.reportSlide)
	})
}

func positionParam(ctx *gin.Context) (int, *api.Error) {
	position, err := strconv.Atoi(ctx.Param("position"))
	if err != nil {
		return 0, &api.Error{Code: http.StatusBadRequest, Message: "invalid position"}
	}
	return position, nil
}

func (i *ItemController) addItem(ctx *gin.Context) (any, *api.Error) {
	var req packets.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	position, err := i.engine.AddItem(req.Item, req.Index, req.SetActive)
	if err != nil {
		log.Error().Err(err).Msg("[items] add failed")
		return nil, mapEngineError(err)
	}
	return packets.AddItemResponse{Position: position}, nil
}

func (i *ItemController) updateItem(ctx *gin.Context) (any, *api.Error) {
	position, apiErr := positionParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var req packets.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := i.engine.UpdateItem(position, req.Item); err != nil {
		return nil, mapEngineError(err)
	}
	return nil, nil
}

func (i *ItemController) deleteItem(ctx *gin.Context) (any, *api.Error) {
	position, apiErr := positionParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := i.engine.DeleteItem(position); err != nil {
		return nil, mapEngineError(err)
	}
	return nil, nil
}

func (i *ItemController) moveItem(ctx *gin.Context) (any, *api.Error) {
	var req packets.MoveItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	perm, err := i.engine.MoveItem(*req.From, *req.To)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return packets.MoveItemResponse{Permutation: perm}, nil
}

// reportSlide is the rasterizer callback: one call per extracted page/frame.
func (i *ItemController) reportSlide(ctx *gin.Context) (any, *api.Error) {
	position, apiErr := positionParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := i.engine.ReportSlide(position); err != nil {
		return nil, mapEngineError(err)
	}
	return nil, nil
}
