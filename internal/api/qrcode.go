package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hsliukangle/gate/internal/pkg/apperr"
	"github.com/hsliukangle/gate/internal/service"
)

// GetQrcode 用户查看入闸二维码
// 不带order_id时走免支付路径，带order_id时只返回支付流程已发出的二维码
func GetQrcode(c *gin.Context) {
	userID := c.GetUint("userId")

	var orderID uint
	if v := c.Query("order_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  "order_id格式错误",
			})
			return
		}
		orderID = uint(id)
	}

	enterLog, err := service.EnterLog.IssueOrReuse(userID, orderID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"qrcode":   enterLog.Qrcode,
			"enter_at": formatTime(enterLog.EnterAt),
			"leave_at": formatTime(enterLog.LeaveAt),
		},
	})
}

// CoachQrcode 教练查看入闸二维码
// 教练必须已有支付完成的订单，只复用该订单未离开的二维码，不直接创建
func CoachQrcode(c *gin.Context) {
	userID := c.GetUint("userId")

	order, err := service.Order.LastCompleted(userID)
	if err != nil {
		fail(c, err)
		return
	}
	if order == nil {
		fail(c, apperr.NotFound("教练无关联订单"))
		return
	}

	enterLog, err := service.EnterLog.FindOpen(userID, order.ID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			fail(c, apperr.NotFound("教练无入闸二维码"))
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"order_id": order.ID,
			"qrcode":   enterLog.Qrcode,
		},
	})
}

// formatTime 时间格式化为ISO-8601，空值返回nil
func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
