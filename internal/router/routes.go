package router

import (
	"github.com/gin-gonic/gin"

	"github.com/hsliukangle/gate/internal/api"
	"github.com/hsliukangle/gate/internal/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine) {
	// 根路径探活
	r.GET("/", api.Index)

	// 微信业务域名校验文件
	r.StaticFile("/L2DuZBtxbl.txt", "./L2DuZBtxbl.txt")

	// 闸机设备接口，路径由硬件协议固定，不走api前缀也不做认证
	r.GET("/getStatus", api.GetStatus)
	r.GET("/searchCardAcs", api.SearchCardAcs)

	// 小程序API路由
	setupAPIRoutes(r)
}

// setupAPIRoutes 设置小程序API路由
func setupAPIRoutes(r *gin.Engine) {
	apiGroup := r.Group("/api/v1")
	apiGroup.Use(middleware.Cors())

	apiGroup.GET("/health", api.HealthCheck)

	// 微信相关（不需要认证）
	wx := apiGroup.Group("/wechat")
	{
		wx.GET("/openid", api.GetOpenID) // 登录码换openid
	}

	// 认证相关
	auth := apiGroup.Group("/auth")
	{
		auth.POST("/wx/login", api.WXLogin) // 注册&登录
	}

	// 支付回调（不需要认证）
	apiGroup.POST("/pay_notify", api.PayNotify)

	// 需要认证的路由
	authorized := apiGroup.Group("/")
	authorized.Use(middleware.JWT())
	{
		authorized.GET("/qrcode", api.GetQrcode)            // 用户查看二维码
		authorized.GET("/coach_qrcode", api.CoachQrcode)    // 教练查看二维码
		authorized.GET("/pay", api.Pay)                     // 预支付下单
	}
}
