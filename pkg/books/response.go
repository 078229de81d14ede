package books

import (
	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
)

type response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, response{Status: statusSuccess, Message: message, Data: data})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, response{Status: statusFail, Message: message})
}
