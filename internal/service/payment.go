package service

import (
	"bytes"
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hsliukangle/gate/internal/config"
	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/apperr"
)

var Payment = new(PaymentService)

type PaymentService struct{}

const wxPrepayURL = "https://api.mch.weixin.qq.com/v3/pay/transactions/jsapi"

// 商户私钥只加载一次
var (
	mchKey     *rsa.PrivateKey
	mchKeyOnce sync.Once
	mchKeyErr  error
)

// 小程序拉起支付所需参数
type PrepayParams struct {
	AppID     string `json:"appId"`
	TimeStamp string `json:"timeStamp"`
	NonceStr  string `json:"nonceStr"`
	Package   string `json:"package"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
}

// 支付通知中解密出的交易数据
type NotifyResource struct {
	OutTradeNo    string `json:"out_trade_no"`
	TransactionID string `json:"transaction_id"`
	TradeState    string `json:"trade_state"`
	Payer         struct {
		OpenID string `json:"openid"`
	} `json:"payer"`
}

// Prepay 微信支付APIv3 JSAPI统一下单，返回小程序拉起支付的参数
// 文档参考：https://pay.weixin.qq.com/wiki/doc/apiv3/apis/chapter3_5_1.shtml
func (s *PaymentService) Prepay(order *model.Order, openid string) (*PrepayParams, error) {
	if config.GlobalConfig == nil {
		return nil, errors.New("配置未初始化")
	}
	cfg := config.GlobalConfig.WeChat

	body := map[string]interface{}{
		"appid":        cfg.AppID,
		"mchid":        cfg.MchID,
		"description":  cfg.PayDescription,
		"out_trade_no": order.OrderNo,
		"notify_url":   cfg.NotifyURL,
		"amount": map[string]interface{}{
			"total":    int(order.Amount*100 + 0.5), // 元转分
			"currency": "CNY",
		},
		"payer": map[string]interface{}{
			"openid": openid,
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("构建下单请求失败: %v", err)
	}

	// 构造APIv3请求签名
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	nonce := generateNonceStr()
	message := fmt.Sprintf("POST\n/v3/pay/transactions/jsapi\n%s\n%s\n%s\n", timestamp, nonce, string(bodyBytes))
	signature, err := s.sign(message)
	if err != nil {
		return nil, fmt.Errorf("请求签名失败: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, wxPrepayURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, apperr.Upstream(err, "创建下单请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf(
		`WECHATPAY2-SHA256-RSA2048 mchid="%s",nonce_str="%s",signature="%s",timestamp="%s",serial_no="%s"`,
		cfg.MchID, nonce, signature, timestamp, cfg.MchSerialNo))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.Upstream(err, "支付下单请求失败")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream(err, "读取下单响应失败")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(fmt.Errorf("http_code: %d, body: %s", resp.StatusCode, respBody), "下单状态码异常")
	}

	var prepayResp struct {
		PrepayID string `json:"prepay_id"`
	}
	if err := json.Unmarshal(respBody, &prepayResp); err != nil {
		return nil, apperr.Upstream(err, "解析下单响应失败")
	}
	if prepayResp.PrepayID == "" {
		return nil, apperr.Upstream(fmt.Errorf("body: %s", respBody), "prepay_id不存在")
	}

	// 小程序侧调起支付的参数同样需要签名
	params := &PrepayParams{
		AppID:     cfg.AppID,
		TimeStamp: timestamp,
		NonceStr:  nonce,
		Package:   "prepay_id=" + prepayResp.PrepayID,
		SignType:  "RSA",
	}
	payMessage := fmt.Sprintf("%s\n%s\n%s\n%s\n", params.AppID, params.TimeStamp, params.NonceStr, params.Package)
	params.PaySign, err = s.sign(payMessage)
	if err != nil {
		return nil, fmt.Errorf("支付参数签名失败: %v", err)
	}

	return params, nil
}

// ParseNotify 解析支付结果通知，解密resource得到交易数据
// 通知密文使用APIv3密钥做AES-256-GCM加密，解密失败即视为非法通知
func (s *PaymentService) ParseNotify(body []byte) (*NotifyResource, error) {
	if config.GlobalConfig == nil {
		return nil, errors.New("配置未初始化")
	}
	cfg := config.GlobalConfig.WeChat

	var envelope struct {
		EventType string `json:"event_type"`
		Resource  struct {
			Algorithm      string `json:"algorithm"`
			Ciphertext     string `json:"ciphertext"`
			Nonce          string `json:"nonce"`
			AssociatedData string `json:"associated_data"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperr.Validation("解析通知数据失败: %v", err)
	}

	plain, err := decryptAESGCM(cfg.APIv3Key, envelope.Resource.Nonce, envelope.Resource.AssociatedData, envelope.Resource.Ciphertext)
	if err != nil {
		return nil, apperr.Validation("解密通知数据失败: %v", err)
	}

	var resource NotifyResource
	if err := json.Unmarshal(plain, &resource); err != nil {
		return nil, apperr.Validation("解析交易数据失败: %v", err)
	}

	return &resource, nil
}

// sign 使用商户私钥做RSA-SHA256签名，结果base64编码
func (s *PaymentService) sign(message string) (string, error) {
	key, err := s.privateKey()
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

func (s *PaymentService) privateKey() (*rsa.PrivateKey, error) {
	mchKeyOnce.Do(func() {
		mchKey, mchKeyErr = loadPrivateKey(config.GlobalConfig.WeChat.PrivateKeyPath)
	})
	return mchKey, mchKeyErr
}

// loadPrivateKey 加载PEM格式的商户API私钥，兼容PKCS#8和PKCS#1
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取私钥文件失败: %v", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("私钥文件不是有效的PEM格式")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("私钥不是RSA类型")
		}
		return rsaKey, nil
	}

	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// decryptAESGCM APIv3通知解密
func decryptAESGCM(apiV3Key, nonce, associatedData, ciphertext string) ([]byte, error) {
	cipherData, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("base64解码失败: %v", err)
	}

	block, err := aes.NewCipher([]byte(apiV3Key))
	if err != nil {
		return nil, fmt.Errorf("创建AES密码块失败: %v", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("创建GCM失败: %v", err)
	}

	return gcm.Open(nil, []byte(nonce), cipherData, []byte(associatedData))
}

// 生成随机字符串
func generateNonceStr() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 32)
	for i := range b {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		b[i] = chars[n.Int64()]
	}
	return string(b)
}
