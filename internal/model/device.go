package model

import (
	"time"
)

// Device 闸机设备，首次上报时创建，之后只更新活跃时间
type Device struct {
	ID            uint       `json:"id" gorm:"primarykey"`
	DeviceNo      string     `json:"device_no" gorm:"size:64;uniqueIndex;comment:设备号"`
	FirstActiveAt *time.Time `json:"first_active_at" gorm:"comment:首次激活时间"`
	ActiveAt      *time.Time `json:"active_at" gorm:"comment:最近活跃时间"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
