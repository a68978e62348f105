package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hsliukangle/gate/internal/pkg/card"
	"github.com/hsliukangle/gate/internal/pkg/logger"
	"github.com/hsliukangle/gate/internal/service"
)

// 闸机读头类型：9为二维码
const readerTypeQrcode = 9

// 闸机方向：0进 1出
const (
	readerDirectionEnter = 0
	readerDirectionLeave = 1
)

// GetStatus 闸机心跳
// 无论处理结果如何都回显Key，闸机协议要求必须有应答
func GetStatus(c *gin.Context) {
	key := c.Query("Key")
	serial := c.Query("Serial")

	if key == "" || serial == "" {
		logger.Infof("闸机心跳, error: 缺少参数: Key, Serial")
	} else if _, err := service.Device.Touch(serial); err != nil {
		logger.Infof("闸机心跳, error: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"Key": key})
}

// SearchCardAcs 闸机进出请求
// 闸机协议没有错误详情的位置，所有失败统一收敛为拒绝应答，
// 具体原因只进日志；任何情况下都返回200和完整应答结构
func SearchCardAcs(c *gin.Context) {
	reader, qrcode, serial, err := parseGateRequest(c)

	if err == nil {
		// 更新或创建设备并更新活跃状态，与进出校验结果无关
		if _, touchErr := service.Device.Touch(serial); touchErr != nil {
			logger.Infof("闸机请求, 更新设备失败: %v", touchErr)
		}

		switch reader {
		case readerDirectionEnter:
			// 维护进入记录
			err = service.EnterLog.RecordEntry(qrcode, serial)
		case readerDirectionLeave:
			// 维护退出记录
			err = service.EnterLog.RecordExit(qrcode, serial)
		}
	}

	if err != nil {
		logger.Infof("闸机请求, error: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"ActIndex": 0,
			"AcsRes":   "0",
			"Time":     "0",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ActIndex": reader,
		"AcsRes":   "1",
		"Time":     "1",
	})
}

// parseGateRequest 解析并校验闸机请求参数
func parseGateRequest(c *gin.Context) (reader int, qrcode, serial string, err error) {
	readerType, err := strconv.Atoi(c.Query("type"))
	if err != nil {
		return 0, "", "", err
	}
	if readerType != readerTypeQrcode {
		return 0, "", "", errTypeNotQrcode
	}

	reader, err = strconv.Atoi(c.Query("Reader"))
	if err != nil {
		return 0, "", "", err
	}
	if reader != readerDirectionEnter && reader != readerDirectionLeave {
		return 0, "", "", errBadReader
	}

	serial = c.Query("Serial")
	if serial == "" {
		return 0, "", "", errMissingSerial
	}

	// base64解码二维码内容
	qrcode, err = card.DecodeString(c.Query("Card"))
	if err != nil {
		return 0, "", "", err
	}

	return reader, qrcode, serial, nil
}

var (
	errTypeNotQrcode = errors.New("类型必须为二维码")
	errBadReader     = errors.New("Reader类型错误")
	errMissingSerial = errors.New("缺少参数: Serial")
)
