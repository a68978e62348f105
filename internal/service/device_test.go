package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/database"
)

func TestDeviceTouchCreate(t *testing.T) {
	setupTestDB(t)

	device, err := Device.Touch("DEV1")
	require.NoError(t, err)

	assert.Equal(t, "DEV1", device.DeviceNo)
	require.NotNil(t, device.FirstActiveAt)
	require.NotNil(t, device.ActiveAt)
	// 首次上报时两个时间一致
	assert.Equal(t, device.FirstActiveAt.Unix(), device.ActiveAt.Unix())
}

func TestDeviceTouchUpdate(t *testing.T) {
	setupTestDB(t)

	first, err := Device.Touch("DEV1")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	second, err := Device.Touch("DEV1")
	require.NoError(t, err)

	// 再次上报不会新建记录，首次激活时间保持不变
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.FirstActiveAt.Unix(), second.FirstActiveAt.Unix())
	assert.Greater(t, second.ActiveAt.Unix(), first.ActiveAt.Unix())

	var count int64
	database.DB.Model(&model.Device{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeviceTouchBackfillFirstActive(t *testing.T) {
	setupTestDB(t)

	// 历史数据可能缺首次激活时间
	require.NoError(t, database.DB.Create(&model.Device{DeviceNo: "DEV-OLD"}).Error)

	device, err := Device.Touch("DEV-OLD")
	require.NoError(t, err)
	require.NotNil(t, device.FirstActiveAt)
	require.NotNil(t, device.ActiveAt)
}
