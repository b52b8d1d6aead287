package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, body interface{}) {
	ctx.JSON(status, body)
}

// Success returns a 200 response with the payload as the top-level object.
func Success(ctx *gin.Context, data gin.H) {
	Respond(ctx, 200, data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, ErrorResponse{Error: message, Code: code})
}
