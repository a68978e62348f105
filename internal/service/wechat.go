package service

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hsliukangle/gate/internal/config"
	"github.com/hsliukangle/gate/internal/middleware"
	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/apperr"
	"github.com/hsliukangle/gate/internal/pkg/cache"
)

var WeChat = new(WeChatService)

type WeChatService struct{}

// session_key缓存：openid -> session_key
// 登录码换取的session_key只在解密手机号时用一次，带TTL避免无限增长
var (
	sessionCache     *cache.Cache
	sessionCacheOnce sync.Once
)

const sessionCacheMaxEntries = 10000

func sessions() *cache.Cache {
	sessionCacheOnce.Do(func() {
		ttl := 300
		if config.GlobalConfig != nil && config.GlobalConfig.WeChat.SessionTTL > 0 {
			ttl = config.GlobalConfig.WeChat.SessionTTL
		}
		sessionCache = cache.New(time.Duration(ttl)*time.Second, sessionCacheMaxEntries)
	})
	return sessionCache
}

// 微信jscode2session接口响应
type wxSessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// GetOpenID 用登录码换取openid，并缓存session_key供后续解密手机号
func (s *WeChatService) GetOpenID(code string) (string, error) {
	if config.GlobalConfig == nil {
		return "", errors.New("配置未初始化")
	}
	cfg := config.GlobalConfig.WeChat

	url := fmt.Sprintf("https://api.weixin.qq.com/sns/jscode2session?appid=%s&secret=%s&js_code=%s&grant_type=authorization_code",
		cfg.AppID, cfg.AppSecret, code)

	resp, err := http.Get(url)
	if err != nil {
		return "", apperr.Upstream(err, "请求微信接口失败")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Upstream(err, "读取微信响应失败")
	}

	var wxResp wxSessionResponse
	if err = json.Unmarshal(body, &wxResp); err != nil {
		return "", apperr.Upstream(err, "解析微信响应失败")
	}

	if wxResp.ErrCode != 0 {
		return "", apperr.Upstream(fmt.Errorf("errcode=%d errmsg=%s", wxResp.ErrCode, wxResp.ErrMsg), "获取openid失败")
	}

	sessions().Set(wxResp.OpenID, wxResp.SessionKey)

	return wxResp.OpenID, nil
}

// Login 注册或登录：解密手机号、维护用户信息、签发token
func (s *WeChatService) Login(openid, nickname, avatar, encryptedData, iv string) (*model.User, string, error) {
	sessionKey, ok := sessions().Get(openid)
	if !ok {
		return nil, "", apperr.Validation("未获取到session_key")
	}

	phone, err := s.DecryptPhone(sessionKey, encryptedData, iv)
	if err != nil {
		return nil, "", apperr.Validation("解密手机号失败: %v", err)
	}

	user, err := User.GetOrCreate(openid, nickname, avatar, phone)
	if err != nil {
		return nil, "", err
	}

	token, err := middleware.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("生成token失败: %v", err)
	}

	return user, token, nil
}

// 手机号密文解密出的数据结构
type wxPhoneInfo struct {
	PhoneNumber     string `json:"phoneNumber"`
	PurePhoneNumber string `json:"purePhoneNumber"`
	CountryCode     string `json:"countryCode"`
}

// DecryptPhone 解密小程序加密数据获取手机号
// AES-128-CBC，密钥和iv均为base64编码，明文带PKCS#7填充
func (s *WeChatService) DecryptPhone(sessionKey, encryptedData, iv string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(sessionKey)
	if err != nil {
		return "", fmt.Errorf("session_key解码失败: %v", err)
	}
	ivBytes, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("iv解码失败: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		return "", fmt.Errorf("密文解码失败: %v", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("创建AES密码块失败: %v", err)
	}
	if len(ivBytes) != block.BlockSize() {
		return "", errors.New("iv长度错误")
	}
	if len(data) == 0 || len(data)%block.BlockSize() != 0 {
		return "", errors.New("密文长度错误")
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, ivBytes).CryptBlocks(plain, data)

	// 去除PKCS#7填充
	padding := int(plain[len(plain)-1])
	if padding <= 0 || padding > block.BlockSize() || padding > len(plain) {
		return "", errors.New("填充格式错误")
	}
	plain = plain[:len(plain)-padding]

	var info wxPhoneInfo
	if err := json.Unmarshal(plain, &info); err != nil {
		return "", fmt.Errorf("解析手机号数据失败: %v", err)
	}
	if info.PhoneNumber == "" {
		return "", errors.New("手机号为空")
	}

	return info.PhoneNumber, nil
}
