package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret"`
		ExpireTime int    `yaml:"expire_time"`
	} `yaml:"jwt"`

	Log struct {
		Level    string `yaml:"level"`     // 日志级别: debug, info, warn, error
		Format   string `yaml:"format"`    // 日志格式: json, text
		Output   string `yaml:"output"`    // 输出方式: console, file, both
		FilePath string `yaml:"file_path"` // 日志文件路径
	} `yaml:"log"`

	WeChat struct {
		AppID          string  `yaml:"app_id"`
		AppSecret      string  `yaml:"app_secret"`
		MchID          string  `yaml:"mch_id"`
		MchSerialNo    string  `yaml:"mch_serial_no"`    // 商户API证书序列号
		APIv3Key       string  `yaml:"api_v3_key"`       // APIv3密钥，32位
		PrivateKeyPath string  `yaml:"private_key_path"` // 商户API私钥路径
		NotifyURL      string  `yaml:"notify_url"`       // 支付结果通知地址
		PayDescription string  `yaml:"pay_description"`  // 下单商品描述
		EntryFee       float64 `yaml:"entry_fee"`        // 单次入闸金额（元）
		SessionTTL     int     `yaml:"session_ttl"`      // session_key缓存时长（秒）
	} `yaml:"wechat"`

	Gate struct {
		OfflineMinutes int `yaml:"offline_minutes"` // 设备离线告警阈值（分钟）
	} `yaml:"gate"`
}

var GlobalConfig *Config

func Load() (*Config, error) {
	if GlobalConfig != nil {
		return GlobalConfig, nil
	}

	// 获取配置文件路径
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("获取工作目录失败: %v", err)
		}

		// 尝试默认配置路径
		configPath = filepath.Join(workDir, "config", "config.yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = filepath.Join(workDir, "config.yaml")
		}
	}

	// 读取配置文件
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败 %s: %v", configPath, err)
	}

	// 解析配置文件
	config := &Config{}
	err = yaml.Unmarshal(configFile, config)
	if err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %v", err)
	}

	// 设置默认值
	if config.Server.Port == "" {
		config.Server.Port = "8000"
	}
	if config.Server.Mode == "" {
		config.Server.Mode = "release"
	}

	// 日志配置默认值
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	if config.Log.Output == "" {
		config.Log.Output = "console"
	}
	if config.Log.FilePath == "" {
		config.Log.FilePath = "logs/gate.log"
	}

	// 微信配置默认值
	if config.WeChat.PayDescription == "" {
		config.WeChat.PayDescription = "门禁系统充值"
	}
	if config.WeChat.EntryFee == 0 {
		config.WeChat.EntryFee = 0.01
	}
	if config.WeChat.SessionTTL == 0 {
		config.WeChat.SessionTTL = 300 // 5分钟
	}

	// 闸机配置默认值
	if config.Gate.OfflineMinutes == 0 {
		config.Gate.OfflineMinutes = 10
	}

	GlobalConfig = config
	return config, nil
}
