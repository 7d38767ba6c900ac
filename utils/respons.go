package utils

import "github.com/gin-gonic/gin"

// JSONResponse is the envelope returned by every REST endpoint.
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{Status: code < 300 && code >= 200, Message: message, Data: data})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, failure(err))
}

// AbortWithError writes the failure envelope and stops the chain.
func AbortWithError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, failure(err))
}

func failure(err error) JSONResponse {
	return JSONResponse{Message: err.Error()}
}
