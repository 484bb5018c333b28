package router

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-screener/internal/api/handler"
)

// APIKeyHeader 携带 API Key 的请求头
const APIKeyHeader = "X-API-Key"

// RegisterRoutes 注册 API 路由。apiKeys 非空时，除健康检查外的接口都需要 X-API-Key。
func RegisterRoutes(h *server.Hertz, screeningHandler *handler.ScreeningHandler, apiKeys []string) {
	api := h.Group("/api/v1")

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	protected := api.Group("")
	if len(apiKeys) > 0 {
		protected.Use(apiKeyAuth(apiKeys))
	}
	protected.GET("/models", screeningHandler.HandleModels)
	protected.POST("/screenings", screeningHandler.HandleScreen)
}

func apiKeyAuth(keys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+APIKeyHeader, ""),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		}),
		keyauth.WithErrorHandler(func(_ context.Context, ctx *app.RequestContext, err error) {
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, handler.WarningResponse{Warning: "Missing or invalid API key."})
		}),
	)
}
