package middleware

import (
	"EventGallery/internal/pkg/consts"
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// CommonMiddleware 推断对外访问地址，配置了 public_base_url 时以配置为准
func CommonMiddleware(publicBaseURL string) gin.HandlerFunc {
	publicBaseURL = strings.TrimRight(publicBaseURL, "/")
	return func(c *gin.Context) {
		baseURL := publicBaseURL

		if baseURL == "" {
			if referer := c.GetHeader("Referer"); referer != "" {
				if u, err := url.Parse(referer); err == nil && u.Host != "" {
					baseURL = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
				}
			}
		}

		if baseURL == "" {
			scheme := "http"
			if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
				scheme = "https"
			}
			baseURL = fmt.Sprintf("%s://%s", scheme, c.Request.Host)
		}

		c.Set(consts.BaseURL, baseURL)
		c.Next()
	}
}

// BaseURL 读取 CommonMiddleware 推断出的地址
func BaseURL(c *gin.Context) string {
	return c.GetString(consts.BaseURL)
}
