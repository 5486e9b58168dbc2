package security

import (
	"net/http"
	"strings"

	jwtsec "SupportChat/tools/security"
	"SupportChat/tools/errs"

	"github.com/gin-gonic/gin"
)

// —— context key ——
// 后续 handler 统一用这俩 key 读取
const (
	CtxUserIDKey = "authUserId" // string
	CtxEmailKey  = "authEmail"  // string
)

type Options struct {
	JWT jwtsec.Options

	// 读取哪个请求头；默认 Authorization: Bearer
	HeaderToken               string
	EnableAuthorizationBearer bool
}

func DefaultOptions(jwt jwtsec.Options) *Options {
	return &Options{
		JWT:                       jwt,
		HeaderToken:               "authorization",
		EnableAuthorizationBearer: true,
	}
}

// Middleware HTTP 边界的鉴权：校验 bearer 令牌并把身份写入 gin context。
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		// 兼容 Authorization: Bearer xxx
		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuthRejected)
			return
		}

		claims, err := jwtsec.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenExpired.WithDetail(err.Error()))
			return
		}
		ident, err := jwtsec.IdentityFromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuthRejected.WithDetail(err.Error()))
			return
		}

		c.Set(CtxUserIDKey, ident.UserID)
		if ident.Email != "" {
			c.Set(CtxEmailKey, ident.Email)
		}
		c.Next()
	}
}

// UserID 从 gin context 取当前已鉴权用户。
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
