package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsliukangle/gate/internal/config"
	"github.com/hsliukangle/gate/internal/pkg/logger"
	"github.com/hsliukangle/gate/internal/service"
)

// Pay 预支付下单
// 创建订单后调微信下单，任何一步失败都把订单置为失败并返回统一提示
func Pay(c *gin.Context) {
	userID := c.GetUint("userId")

	user, err := service.User.Get(userID)
	if err != nil {
		fail(c, err)
		return
	}

	amount := config.GlobalConfig.WeChat.EntryFee
	order, err := service.Order.Create(user.ID, amount)
	if err != nil {
		fail(c, err)
		return
	}

	params, err := service.Payment.Prepay(order, user.OpenID)
	if err != nil {
		logger.Errorf("支付异常请稍后重试, order_no: %s, error: %v", order.OrderNo, err)
		// 更新订单为失败
		if failErr := service.Order.MarkFailed(order.OrderNo, err.Error()); failErr != nil {
			logger.Errorf("更新订单为失败状态出错, order_no: %s, error: %v", order.OrderNo, failErr)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "支付异常请稍后重试",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"order_no": order.OrderNo,
			"params":   params,
		},
	})
}

// PayNotify 支付结果通知
// 重复通知靠订单状态条件更新挡掉，处理过的直接回成功
func PayNotify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Errorf("回调异常, 读取通知数据失败: %v", err)
		notifyFail(c)
		return
	}

	resource, err := service.Payment.ParseNotify(body)
	if err != nil {
		logger.Errorf("回调异常, error: %v", err)
		notifyFail(c)
		return
	}

	// 根据交易状态处理订单
	if resource.TradeState != "SUCCESS" {
		logger.Errorf("回调异常, 支付通知状态非正常: %+v", resource)
		notifyFail(c)
		return
	}

	// 更新订单为已支付
	order, err := service.Order.MarkPaid(resource.OutTradeNo, resource.TransactionID)
	if err != nil {
		logger.Errorf("回调异常, 更新订单失败, order_no: %s, error: %v", resource.OutTradeNo, err)
		notifyFail(c)
		return
	}
	if order == nil {
		// 订单不处于付款中，视为重复通知，直接回成功
		logger.Infof("支付通知重复或订单不存在, order_no: %s", resource.OutTradeNo)
		c.JSON(http.StatusOK, gin.H{"code": "SUCCESS", "message": "成功"})
		return
	}

	// 创建入闸二维码
	user, err := service.User.GetByOpenID(resource.Payer.OpenID)
	if err != nil {
		logger.Errorf("回调异常, 未找到支付用户, openid: %s, error: %v", resource.Payer.OpenID, err)
		notifyFail(c)
		return
	}
	if _, err := service.EnterLog.IssueForOrder(user.ID, order.ID); err != nil {
		logger.Errorf("回调异常, 创建入闸二维码失败, order_no: %s, error: %v", order.OrderNo, err)
		notifyFail(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": "SUCCESS", "message": "成功"})
}

// notifyFail 按APIv3约定返回失败应答，微信会重试通知
func notifyFail(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "FAIL",
		"message": "失败",
	})
}
