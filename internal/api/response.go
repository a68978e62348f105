package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsliukangle/gate/internal/pkg/apperr"
	"github.com/hsliukangle/gate/internal/pkg/logger"
)

// fail 统一错误响应
// 客户端原因（未找到/状态冲突/参数错误）返回400和具体消息，
// 其余按系统错误处理，细节只进日志不出接口
func fail(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound, apperr.KindConflict, apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
	default:
		logger.Errorf("%s %s 处理失败: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "系统错误",
		})
	}
}
