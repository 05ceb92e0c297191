package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"regexp"
	"time"
)

var secretField = regexp.MustCompile(`("(?:password|idToken|refreshToken|secureToken)"\s*:\s*)"[^"]*"`)

// HTTPTransport 记录外部 HTTP 调用，密码与令牌字段会被遮蔽
type HTTPTransport struct {
	Transport http.RoundTripper
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Transport: http.DefaultTransport}
}

func redact(body []byte) string {
	return truncate(secretField.ReplaceAllString(string(body), `$1"[REDACTED]"`))
}

func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	u := *req.URL
	u.RawQuery = ""
	fields := []any{
		log.String("method", req.Method),
		log.String("url", u.String()),
		log.Duration("latency", elapsed),
		log.String("req_body", redact(reqBody)),
	}

	if err != nil {
		log.ErrorContext(req.Context(), "HTTP_CALL_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	var resBody []byte
	if resp.Body != nil {
		resBody, _ = io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(resBody))
	}
	fields = append(fields, log.Int("status", resp.StatusCode), log.String("res_body", redact(resBody)))

	switch {
	case resp.StatusCode >= 500:
		log.ErrorContext(req.Context(), "HTTP_CALL_FAILED", fields...)
	case elapsed > 2*SlowThreshold:
		log.WarnContext(req.Context(), "HTTP_CALL_SLOW", fields...)
	default:
		log.InfoContext(req.Context(), "HTTP_CALL", fields...)
	}

	return resp, nil
}
