package middleware

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const maxAuditBody = 16384

// 登录请求的密码与响应里的令牌不落日志
var sensitiveField = regexp.MustCompile(`("(?:password|token)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

func redact(body string) string {
	return sensitiveField.ReplaceAllString(body, `$1"***"`)
}

// capturingWriter 保留响应体前 maxAuditBody 字节
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	if room := maxAuditBody - w.body.Len(); room > 0 {
		w.body.Write(b[:min(room, len(b))])
	}
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AuditMiddleware 请求与响应各记一条，二进制响应只记类型
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		query := c.Request.URL.RawQuery
		if decoded, err := url.QueryUnescape(query); err == nil {
			query = decoded
		}
		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", query),
			log.String("req_body", auditRequestBody(c)),
		)

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		start := time.Now()

		c.Next()

		log.InfoContext(ctx, "Send Response",
			log.Int("status", w.Status()),
			log.Duration("latency", time.Since(start)),
			log.String("res_body", auditResponseBody(w)),
		)
	}
}

func auditResponseBody(w *capturingWriter) string {
	contentType := w.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return "<" + contentType + ">"
	}
	return redact(w.body.String())
}

// auditRequestBody 上传请求只记录长度，其余请求体脱敏后记录
func auditRequestBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return "<multipart " + c.GetHeader("Content-Length") + " bytes>"
	}

	head, _ := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody))
	rest := c.Request.Body
	c.Request.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), rest), rest}

	return redact(string(head))
}
