package response

import (
	"EventGallery/internal/api/dto"
	"EventGallery/internal/service"
	stdjson "encoding/json"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// 业务码，HTTP 状态统一为 200
const (
	Ok                  = 200
	BadRequest          = service.BadRequest
	Unauthorized        = service.Unauthorized
	Forbidden           = service.Forbidden
	NotFound            = service.NotFound
	Conflict            = service.Conflict
	TooLarge            = service.TooLarge
	InternalServerError = service.InternalServerError
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Response{Code: Ok, Message: "success", Data: data})
}

func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{Code: businessCode, Message: message})
}

// Error 未登记的错误统一按系统异常返回，不暴露细节
func Error(c *gin.Context, err error) {
	code, message, known := Resolve(err)
	if !known {
		log.ErrorContext(c.Request.Context(), "unhandled error", "path", c.FullPath(), "err", err)
	}
	Fail(c, code, message)
}

// Resolve 把错误翻译成业务码与提示，known 为 false 表示未登记
func Resolve(err error) (code int, message string, known bool) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return BadRequest, service.ErrParamInvalid.Error(), true
	}
	// gin 绑定走标准库 json，业务代码自行解码时走 go-json
	var stdTypeErr *stdjson.UnmarshalTypeError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &stdTypeErr) || errors.As(err, &typeErr) {
		return BadRequest, "Json错误", true
	}

	if code, ok := service.ErrorMap[err]; ok {
		return code, err.Error(), true
	}
	for sentinel, code := range service.ErrorMap {
		if errors.Is(err, sentinel) {
			return code, sentinel.Error(), true
		}
	}
	return InternalServerError, service.UnExpectedError.Error(), false
}
