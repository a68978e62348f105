package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsliukangle/gate/internal/pkg/logger"
	"github.com/hsliukangle/gate/internal/service"
)

// 微信登录请求结构体
type WXLoginRequest struct {
	OpenID        string `json:"openid" binding:"required"`
	Avatar        string `json:"avatar" binding:"required"`
	NickName      string `json:"nickName" binding:"required"`
	EncryptedData string `json:"encryptedData" binding:"required"`
	IV            string `json:"iv" binding:"required"`
}

// GetOpenID 用小程序登录码换取openid
func GetOpenID(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "缺少参数",
		})
		return
	}

	openid, err := service.WeChat.GetOpenID(code)
	if err != nil {
		logger.Errorf("获取openid失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "获取openid失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"openid": openid,
		},
	})
}

// WXLogin 注册&登录
func WXLogin(c *gin.Context) {
	var req WXLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "缺少参数: openid, avatar, nickName, encryptedData, iv",
		})
		return
	}

	user, token, err := service.WeChat.Login(req.OpenID, req.NickName, req.Avatar, req.EncryptedData, req.IV)
	if err != nil {
		logger.Errorf("登录失败: %v", err)
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"token": token,
			"user": gin.H{
				"id":       user.ID,
				"openid":   user.OpenID,
				"nickname": user.Nickname,
				"avatar":   user.Avatar,
			},
		},
	})
}
