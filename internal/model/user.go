package model

import (
	"time"
)

// User 小程序用户，首次登录时创建，后续登录按需更新，不做删除
type User struct {
	ID        uint   `json:"id" gorm:"primarykey"`
	OpenID    string `json:"openid" gorm:"size:64;index;comment:微信openid"`
	Nickname  string `json:"nickname" gorm:"size:64;comment:昵称"`
	Avatar    string `json:"avatar" gorm:"size:255;comment:头像"`
	Phone     string `json:"phone" gorm:"size:32;comment:手机号"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
