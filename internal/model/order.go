package model

import (
	"time"
)

// 订单状态
const (
	OrderStatusCreated   = 10 // 已创建
	OrderStatusPaying    = 20 // 付款中
	OrderStatusCompleted = 30 // 已完成
	OrderStatusFailed    = 40 // 已失败
	OrderStatusCancelled = 50 // 已取消（预留状态，目前没有写入路径）
)

// Order 支付订单
// 状态线性流转：CREATED → PAYING → COMPLETED，或 PAYING → FAILED
type Order struct {
	ID         uint       `json:"id" gorm:"primarykey"`
	OrderNo    string     `json:"order_no" gorm:"size:64;index;comment:订单号"`
	OutOrderNo string     `json:"out_order_no" gorm:"size:64;comment:微信交易单号"` // 支付成功后才写入
	Amount     float64    `json:"amount" gorm:"comment:金额（元）"`
	Status     int        `json:"status" gorm:"comment:状态 10已创建 20付款中 30已完成 40已失败 50已取消"`
	Note       string     `json:"note" gorm:"type:text;comment:备注"` // 失败原因等
	UserID     uint       `json:"user_id" gorm:"index;comment:用户ID"`
	User       User       `json:"-" gorm:"foreignKey:UserID"`
	PaidAt     *time.Time `json:"paid_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
