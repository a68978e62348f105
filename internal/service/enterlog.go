package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/apperr"
	"github.com/hsliukangle/gate/internal/pkg/database"
)

var EnterLog = new(EnterLogService)

type EnterLogService struct{}

// IssueOrReuse 获取用户的入闸二维码
// 已有未离开的记录时原样返回，重复调用不会发出新凭证；
// 只有不关联订单（免支付入闸）时才允许直接创建，
// 关联订单的凭证一律由支付成功流程创建
func (s *EnterLogService) IssueOrReuse(userID, orderID uint) (*model.EnterLog, error) {
	var user model.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("未找到用户")
		}
		return nil, err
	}

	enterLog, err := s.findOpen(user.ID, orderID)
	if err != nil {
		return nil, err
	}
	if enterLog != nil {
		return enterLog, nil
	}

	if orderID != 0 {
		return nil, apperr.NotFound("未找到入闸二维码")
	}

	return s.create(user.ID, 0)
}

// IssueForOrder 支付成功后为订单创建入闸二维码
// 重复的支付通知会命中已存在的未离开记录，不会重复创建
func (s *EnterLogService) IssueForOrder(userID, orderID uint) (*model.EnterLog, error) {
	enterLog, err := s.findOpen(userID, orderID)
	if err != nil {
		return nil, err
	}
	if enterLog != nil {
		return enterLog, nil
	}
	return s.create(userID, orderID)
}

// FindOpen 查询用户在指定订单下未离开的记录
func (s *EnterLogService) FindOpen(userID, orderID uint) (*model.EnterLog, error) {
	enterLog, err := s.findOpen(userID, orderID)
	if err != nil {
		return nil, err
	}
	if enterLog == nil {
		return nil, apperr.NotFound("未找到入闸二维码")
	}
	return enterLog, nil
}

// RecordEntry 维护进入记录：未进入 → 已进入
// 闸机收到失败响应后会重发同一张码，这里靠前置状态校验拒绝重放，
// 不会改写已记录的进入信息
func (s *EnterLogService) RecordEntry(qrcode, deviceNo string) error {
	enterLog, err := s.findByQrcode(qrcode)
	if err != nil {
		return err
	}
	if enterLog.EnterAt != nil || enterLog.EnterDeviceNo != "" {
		return apperr.Conflict("此二维码 %s 记录判断此前已进入", qrcode)
	}
	if enterLog.LeaveAt != nil || enterLog.LeaveDeviceNo != "" {
		return apperr.Conflict("此二维码 %s 记录判断此前已离开", qrcode)
	}

	// 条件更新，并发重放只会有一个请求改到行
	now := time.Now()
	result := database.DB.Model(&model.EnterLog{}).
		Where("qrcode = ? AND enter_at IS NULL AND leave_at IS NULL", qrcode).
		Updates(map[string]interface{}{
			"enter_at":        &now,
			"enter_device_no": deviceNo,
		})
	if result.Error != nil {
		return fmt.Errorf("更新进入记录失败: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("此二维码 %s 记录判断此前已进入", qrcode)
	}

	return nil
}

// RecordExit 维护离开记录：已进入 → 已离开（终态）
func (s *EnterLogService) RecordExit(qrcode, deviceNo string) error {
	enterLog, err := s.findByQrcode(qrcode)
	if err != nil {
		return err
	}
	if enterLog.EnterAt == nil || enterLog.EnterDeviceNo == "" {
		return apperr.Conflict("此二维码 %s 记录判断此前还未进入", qrcode)
	}
	if enterLog.LeaveAt != nil || enterLog.LeaveDeviceNo != "" {
		return apperr.Conflict("此二维码 %s 记录判断此前已离开", qrcode)
	}

	now := time.Now()
	result := database.DB.Model(&model.EnterLog{}).
		Where("qrcode = ? AND enter_at IS NOT NULL AND leave_at IS NULL", qrcode).
		Updates(map[string]interface{}{
			"leave_at":        &now,
			"leave_device_no": deviceNo,
		})
	if result.Error != nil {
		return fmt.Errorf("更新离开记录失败: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("此二维码 %s 记录判断此前已离开", qrcode)
	}

	return nil
}

func (s *EnterLogService) findByQrcode(qrcode string) (*model.EnterLog, error) {
	var enterLog model.EnterLog
	if err := database.DB.Where("qrcode = ?", qrcode).First(&enterLog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("未找到 %s 的授权记录", qrcode)
		}
		return nil, err
	}
	return &enterLog, nil
}

func (s *EnterLogService) findOpen(userID, orderID uint) (*model.EnterLog, error) {
	var enterLog model.EnterLog
	err := database.DB.
		Where("user_id = ? AND order_id = ? AND leave_at IS NULL", userID, orderID).
		First(&enterLog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enterLog, nil
}

func (s *EnterLogService) create(userID, orderID uint) (*model.EnterLog, error) {
	enterLog := &model.EnterLog{
		Qrcode:  uuid.New().String(),
		UserID:  userID,
		OrderID: orderID,
	}
	if err := database.DB.Create(enterLog).Error; err != nil {
		return nil, fmt.Errorf("创建入闸二维码失败: %v", err)
	}
	return enterLog, nil
}
