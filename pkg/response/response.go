package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess       = 0
	CodeParamError    = 400
	CodeUnauthorized  = 401
	CodeForbidden     = 403
	CodeNotFound      = 404
	CodeTooManyReq    = 429
	CodeServerError   = 500
	CodeBusinessError = 1000
)

const (
	CodeAccountNotFound     = 1001
	CodeBalanceNotEnough    = 1002
	CodeLimitExceeded       = 1003
	CodeNameMismatch        = 1004
	CodeSelfTransfer        = 1005
	CodeBeneficiaryNotFound = 1006
	CodeTransactionNotFound = 1007
	CodeNotReversible       = 1008
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, status int, code int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Code:    code,
		Message: message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, CodeTooManyReq, message)
}

// ServerError never echoes the underlying cause to the client.
func ServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeServerError, "internal server error")
}

// BusinessError reports a denied operation; the message is the human-readable reason.
func BusinessError(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnprocessableEntity, code, message)
}
