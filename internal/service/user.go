package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/apperr"
	"github.com/hsliukangle/gate/internal/pkg/database"
)

var User = new(UserService)

type UserService struct{}

// Get 根据ID获取用户
func (s *UserService) Get(userID uint) (*model.User, error) {
	var user model.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("未找到用户")
		}
		return nil, err
	}
	return &user, nil
}

// GetByOpenID 根据openid获取用户
func (s *UserService) GetByOpenID(openid string) (*model.User, error) {
	var user model.User
	if err := database.DB.Where("open_id = ?", openid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("未找到用户")
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreate 按openid查找用户，不存在则创建，存在则更新有变化的字段
func (s *UserService) GetOrCreate(openid, nickname, avatar, phone string) (*model.User, error) {
	var user model.User
	err := database.DB.Where("open_id = ?", openid).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		user = model.User{
			OpenID:   openid,
			Nickname: nickname,
			Avatar:   avatar,
			Phone:    phone,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("创建用户失败: %v", err)
		}
		return &user, nil
	}

	// 只更新有变化的字段
	updates := make(map[string]interface{})
	if nickname != "" && user.Nickname != nickname {
		updates["nickname"] = nickname
		user.Nickname = nickname
	}
	if avatar != "" && user.Avatar != avatar {
		updates["avatar"] = avatar
		user.Avatar = avatar
	}
	if phone != "" && user.Phone != phone {
		updates["phone"] = phone
		user.Phone = phone
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("更新用户信息失败: %v", err)
		}
	}

	return &user, nil
}
