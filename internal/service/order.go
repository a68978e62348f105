package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/apperr"
	"github.com/hsliukangle/gate/internal/pkg/database"
)

var Order = new(OrderService)

type OrderService struct{}

// Create 创建订单
// 没有单独的"待支付"环节，创建即进入付款中
func (s *OrderService) Create(userID uint, amount float64) (*model.Order, error) {
	var user model.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("未找到用户")
		}
		return nil, err
	}

	order := &model.Order{
		OrderNo: generateOrderNo(),
		Amount:  amount,
		Status:  model.OrderStatusPaying,
		UserID:  user.ID,
	}

	if err := database.DB.Create(order).Error; err != nil {
		return nil, fmt.Errorf("创建订单失败: %v", err)
	}

	return order, nil
}

// MarkPaid 根据订单号更新订单为已支付
// 条件更新限定在付款中状态，重复的支付通知命中不了任何行，
// 此时返回(nil, nil)而不是错误，调用方按"已处理过"对待
func (s *OrderService) MarkPaid(orderNo, transactionID string) (*model.Order, error) {
	now := time.Now()
	result := database.DB.Model(&model.Order{}).
		Where("order_no = ? AND status = ?", orderNo, model.OrderStatusPaying).
		Updates(map[string]interface{}{
			"status":       model.OrderStatusCompleted,
			"out_order_no": transactionID,
			"paid_at":      &now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("更新订单失败: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var order model.Order
	if err := database.DB.Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkFailed 根据订单号更新订单为失败，订单不存在时静默跳过
func (s *OrderService) MarkFailed(orderNo, note string) error {
	result := database.DB.Model(&model.Order{}).
		Where("order_no = ?", orderNo).
		Updates(map[string]interface{}{
			"status": model.OrderStatusFailed,
			"note":   note,
		})
	return result.Error
}

// LastCompleted 获取用户最近一笔已完成订单，没有时返回(nil, nil)
func (s *OrderService) LastCompleted(userID uint) (*model.Order, error) {
	var order model.Order
	err := database.DB.
		Where("user_id = ? AND status = ?", userID, model.OrderStatusCompleted).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// 生成订单号：时间+随机数组合，碰撞概率可忽略
func generateOrderNo() string {
	return time.Now().Format("20060102150405") + fmt.Sprintf("%05d", rand.Intn(90000)+10000)
}
