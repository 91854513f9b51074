package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the typed failure a handler maps engine errors onto.
type Error struct {
	Code    int
	Message string
}

// HandlerFunc is the endpoint signature: a success value or a typed failure.
type HandlerFunc func(ctx *gin.Context) (any, *Error)

// Controller wraps a gin group so modules can register resolved endpoints.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFunc)    { c.Group.GET(path, ResolveEndpoint(h)) }
func (c *Controller) POST(path string, h HandlerFunc)   { c.Group.POST(path, ResolveEndpoint(h)) }
func (c *Controller) PUT(path string, h HandlerFunc)    { c.Group.PUT(path, ResolveEndpoint(h)) }
func (c *Controller) DELETE(path string, h HandlerFunc) { c.Group.DELETE(path, ResolveEndpoint(h)) }

// ResolveEndpoint turns a HandlerFunc into a gin handler producing exactly
// one response: the success value, or the error envelope with its
// human-readable reason.
func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		if result == nil {
			ctx.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}
