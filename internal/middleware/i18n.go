// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", ParseLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// ParseLanguage maps an Accept-Language header such as
// "zh-TW,zh;q=0.9,en;q=0.8" to a supported locale.
func ParseLanguage(header string) string {
	if header == "" {
		return "en"
	}

	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch first {
	case "zh-TW", "zh-Hant", "zh_TW":
		return "zh_TW"
	default:
		return "en"
	}
}
