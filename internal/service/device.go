package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/database"
)

var Device = new(DeviceService)

type DeviceService struct{}

// Touch 更新或创建设备记录，并更新活跃状态
// 闸机每次上报都会调用，与进出校验结果无关
func (s *DeviceService) Touch(deviceNo string) (*model.Device, error) {
	now := time.Now()

	var device model.Device
	err := database.DB.Where("device_no = ?", deviceNo).First(&device).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		// 首次上报，创建设备记录
		device = model.Device{
			DeviceNo:      deviceNo,
			FirstActiveAt: &now,
			ActiveAt:      &now,
		}
		if err := database.DB.Create(&device).Error; err != nil {
			return nil, fmt.Errorf("创建设备记录失败: %v", err)
		}
		return &device, nil
	}

	updates := map[string]interface{}{
		"active_at": &now,
	}
	// 历史数据可能缺首次激活时间，补上
	if device.FirstActiveAt == nil {
		updates["first_active_at"] = &now
		device.FirstActiveAt = &now
	}

	if err := database.DB.Model(&device).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新设备活跃状态失败: %v", err)
	}
	device.ActiveAt = &now

	return &device, nil
}
