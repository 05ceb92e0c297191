package logger

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/pkg/consts"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type accessEntry struct {
	Time        string `json:"time"`
	Level       string `json:"level"`
	Msg         string `json:"msg"`
	TraceID     string `json:"trace_id,omitempty"`
	LogToken    string `json:"log_token,omitempty"`
	TargetIndex string `json:"target_index"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Status      int    `json:"status"`
	Latency     string `json:"latency"`
	ClientIP    string `json:"client_ip"`
	Bytes       int    `json:"bytes"`
	UserID      string `json:"user_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SetupGin 访问日志与 Logstash 使用同一格式，访客上传没有 user_id
func SetupGin(r *gin.Engine, skipPaths ...string) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: skipPaths,
		Formatter: formatAccess,
	}))
}

func formatAccess(p gin.LogFormatterParams) string {
	entry := accessEntry{
		Time:        p.TimeStamp.Format(time.RFC3339),
		Level:       "INFO",
		Msg:         "GIN_ACCESS",
		TargetIndex: remoteIndex(),
		Method:      p.Method,
		Path:        p.Path,
		Status:      p.StatusCode,
		Latency:     p.Latency.String(),
		ClientIP:    p.ClientIP,
		Bytes:       p.BodySize,
		Error:       p.ErrorMessage,
	}
	if config.Cfg != nil {
		entry.LogToken = config.Cfg.Logstash.Token
	}
	if p.StatusCode >= 500 {
		entry.Level = "ERROR"
	}
	if p.Keys != nil {
		entry.TraceID, _ = p.Keys[TraceIDKey].(string)
		entry.UserID, _ = p.Keys[consts.UserIDKey].(string)
	}
	if entry.TraceID == "" && p.Request != nil {
		entry.TraceID = TraceID(p.Request.Context())
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return ""
	}
	return string(b) + "\n"
}
