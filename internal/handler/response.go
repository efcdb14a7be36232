// Package handler exposes the rewards engine over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func success(ctx *gin.Context, data interface{}) {
	respond(ctx, http.StatusOK, 0, "success", data)
}

func fail(ctx *gin.Context, status int, code int, message string) {
	respond(ctx, status, code, message, nil)
}
