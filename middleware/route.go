package middleware

import (
	midsec "SupportChat/middleware/security"

	"github.com/gin-gonic/gin"
)

// RouteOpt 路由配置选项
type RouteOpt struct {
	IsAuth bool
}

var authOpts *midsec.Options

// ConfigAuth 装配阶段注入鉴权参数，在注册路由前调用一次。
func ConfigAuth(opts *midsec.Options) { authOpts = opts }

// POST 封装
func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path, midsec.Middleware(authOpts), handler)
	} else {
		r.POST(path, handler)
	}
}

// GET 封装
func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path, midsec.Middleware(authOpts), handler)
	} else {
		r.GET(path, handler)
	}
}
