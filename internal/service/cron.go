package service

import (
	"time"

	"github.com/hsliukangle/gate/internal/config"
	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/database"
	"github.com/hsliukangle/gate/internal/pkg/logger"
)

// CronService 定时任务服务
type CronService struct {
	stopChan chan struct{}
}

var Cron = &CronService{
	stopChan: make(chan struct{}),
}

// Start 启动定时任务
func (s *CronService) Start() {
	go s.sweepOfflineDevices()
}

// Stop 停止定时任务
func (s *CronService) Stop() {
	close(s.stopChan)
}

// sweepOfflineDevices 周期检查设备活跃时间，超过阈值未上报心跳的告警
func (s *CronService) sweepOfflineDevices() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			offline := 10
			if config.GlobalConfig != nil && config.GlobalConfig.Gate.OfflineMinutes > 0 {
				offline = config.GlobalConfig.Gate.OfflineMinutes
			}
			deadline := time.Now().Add(-time.Duration(offline) * time.Minute)

			var devices []model.Device
			if err := database.DB.
				Where("active_at IS NOT NULL AND active_at <= ?", deadline).
				Find(&devices).Error; err != nil {
				logger.Errorf("查询离线设备失败: %v", err)
				continue
			}

			for _, device := range devices {
				logger.Warnf("设备 %s 已超过 %d 分钟未上报心跳，最近活跃时间: %s",
					device.DeviceNo, offline, device.ActiveAt.Format("2006-01-02 15:04:05"))
			}

		case <-s.stopChan:
			return
		}
	}
}
