package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/database"
	"github.com/hsliukangle/gate/internal/service"
)

func setupGateRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Order{},
		&model.EnterLog{},
		&model.Device{},
	))
	database.DB = db

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/getStatus", GetStatus)
	r.GET("/searchCardAcs", SearchCardAcs)
	return r
}

func doGateRequest(t *testing.T, r *gin.Engine, path string, query url.Values) map[string]interface{} {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil)
	r.ServeHTTP(w, req)

	// 闸机协议要求任何情况都应答200
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func issueQrcode(t *testing.T, openid string) string {
	t.Helper()

	user := &model.User{OpenID: openid}
	require.NoError(t, database.DB.Create(user).Error)

	enterLog, err := service.EnterLog.IssueOrReuse(user.ID, 0)
	require.NoError(t, err)
	return enterLog.Qrcode
}

func encodeCard(qrcode string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(qrcode))
}

func TestGetStatusEchoesKey(t *testing.T) {
	r := setupGateRouter(t)

	body := doGateRequest(t, r, "/getStatus", url.Values{
		"Key":    {"abc123"},
		"Serial": {"DEV1"},
	})
	assert.Equal(t, "abc123", body["Key"])

	// 心跳同时更新设备活跃状态
	var device model.Device
	require.NoError(t, database.DB.Where("device_no = ?", "DEV1").First(&device).Error)
	assert.NotNil(t, device.ActiveAt)
}

func TestGetStatusMissingParams(t *testing.T) {
	r := setupGateRouter(t)

	// 缺参数也必须应答，Key原样回显
	body := doGateRequest(t, r, "/getStatus", url.Values{})
	assert.Equal(t, "", body["Key"])
}

func TestSearchCardAcsEnterAndLeave(t *testing.T) {
	r := setupGateRouter(t)
	qrcode := issueQrcode(t, "openid-gate-1")

	body := doGateRequest(t, r, "/searchCardAcs", url.Values{
		"type":   {"9"},
		"Reader": {"0"},
		"Serial": {"DEV1"},
		"Card":   {encodeCard(qrcode)},
	})
	assert.Equal(t, float64(0), body["ActIndex"])
	assert.Equal(t, "1", body["AcsRes"])
	assert.Equal(t, "1", body["Time"])

	var enterLog model.EnterLog
	require.NoError(t, database.DB.Where("qrcode = ?", qrcode).First(&enterLog).Error)
	require.NotNil(t, enterLog.EnterAt)
	assert.Equal(t, "DEV1", enterLog.EnterDeviceNo)

	body = doGateRequest(t, r, "/searchCardAcs", url.Values{
		"type":   {"9"},
		"Reader": {"1"},
		"Serial": {"DEV2"},
		"Card":   {encodeCard(qrcode)},
	})
	assert.Equal(t, float64(1), body["ActIndex"])
	assert.Equal(t, "1", body["AcsRes"])

	require.NoError(t, database.DB.Where("qrcode = ?", qrcode).First(&enterLog).Error)
	require.NotNil(t, enterLog.LeaveAt)
	assert.Equal(t, "DEV2", enterLog.LeaveDeviceNo)
}

func TestSearchCardAcsRepeatedEntryDenied(t *testing.T) {
	r := setupGateRouter(t)
	qrcode := issueQrcode(t, "openid-gate-2")

	query := url.Values{
		"type":   {"9"},
		"Reader": {"0"},
		"Serial": {"DEV1"},
		"Card":   {encodeCard(qrcode)},
	}

	body := doGateRequest(t, r, "/searchCardAcs", query)
	assert.Equal(t, "1", body["AcsRes"])

	// 第二次刷同一张码进门，收敛为统一的拒绝应答
	body = doGateRequest(t, r, "/searchCardAcs", query)
	assert.Equal(t, float64(0), body["ActIndex"])
	assert.Equal(t, "0", body["AcsRes"])
	assert.Equal(t, "0", body["Time"])
}

func TestSearchCardAcsUnknownQrcode(t *testing.T) {
	r := setupGateRouter(t)

	body := doGateRequest(t, r, "/searchCardAcs", url.Values{
		"type":   {"9"},
		"Reader": {"0"},
		"Serial": {"DEV1"},
		"Card":   {encodeCard("no-such-qrcode")},
	})
	assert.Equal(t, "0", body["AcsRes"])

	// 校验失败不影响设备活跃状态更新
	var device model.Device
	require.NoError(t, database.DB.Where("device_no = ?", "DEV1").First(&device).Error)
}

func TestSearchCardAcsBadParams(t *testing.T) {
	r := setupGateRouter(t)
	qrcode := issueQrcode(t, "openid-gate-3")

	cases := []struct {
		name  string
		query url.Values
	}{
		{"非二维码读头", url.Values{"type": {"1"}, "Reader": {"0"}, "Serial": {"DEV1"}, "Card": {encodeCard(qrcode)}}},
		{"Reader越界", url.Values{"type": {"9"}, "Reader": {"2"}, "Serial": {"DEV1"}, "Card": {encodeCard(qrcode)}}},
		{"Reader非数字", url.Values{"type": {"9"}, "Reader": {"x"}, "Serial": {"DEV1"}, "Card": {encodeCard(qrcode)}}},
		{"缺少Serial", url.Values{"type": {"9"}, "Reader": {"0"}, "Card": {encodeCard(qrcode)}}},
		{"Card非法base64", url.Values{"type": {"9"}, "Reader": {"0"}, "Serial": {"DEV1"}, "Card": {"!!!!"}}},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("%d_%s", i, tc.name), func(t *testing.T) {
			body := doGateRequest(t, r, "/searchCardAcs", tc.query)
			assert.Equal(t, float64(0), body["ActIndex"])
			assert.Equal(t, "0", body["AcsRes"])
			assert.Equal(t, "0", body["Time"])
		})
	}

	// 参数非法的请求没有进出记录产生
	var enterLog model.EnterLog
	require.NoError(t, database.DB.Where("qrcode = ?", qrcode).First(&enterLog).Error)
	assert.Nil(t, enterLog.EnterAt)
}
