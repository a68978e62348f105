package model

import (
	"time"
)

// EnterLog 入闸凭证及进出记录
// 一条记录对应一张一次性二维码：未进入 → 已进入 → 已离开（终态）
// 进入时间和进入设备号要么都为空要么都有值，离开字段同理；
// 同一(user_id, order_id)同时最多存在一条leave_at为空的记录。
// 记录只增不删，留作进出审计
type EnterLog struct {
	ID            uint       `json:"id" gorm:"primarykey"`
	Qrcode        string     `json:"qrcode" gorm:"size:64;uniqueIndex;comment:二维码"`
	UserID        uint       `json:"user_id" gorm:"index;comment:用户ID"`
	OrderID       uint       `json:"order_id" gorm:"index;comment:订单ID，免支付入闸时为0"`
	EnterAt       *time.Time `json:"enter_at" gorm:"comment:进入时间"`
	EnterDeviceNo string     `json:"enter_device_no" gorm:"size:64;comment:进入设备号"`
	LeaveAt       *time.Time `json:"leave_at" gorm:"comment:离开时间"`
	LeaveDeviceNo string     `json:"leave_device_no" gorm:"size:64;comment:离开设备号"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 沿用线上已有的表名
func (EnterLog) TableName() string {
	return "enter_log"
}
