package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/apperr"
	"github.com/hsliukangle/gate/internal/pkg/database"
)

func TestOrderCreate(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "openid-order-1")

	order, err := Order.Create(user.ID, 0.01)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPaying, order.Status)
	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, 0.01, order.Amount)
	assert.Len(t, order.OrderNo, 19) // 14位时间戳+5位随机数
	assert.Empty(t, order.OutOrderNo)
	assert.Nil(t, order.PaidAt)
}

func TestOrderCreateUnknownUser(t *testing.T) {
	setupTestDB(t)

	_, err := Order.Create(999, 0.01)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestOrderNoUnique(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "openid-order-2")

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		order, err := Order.Create(user.ID, 0.01)
		require.NoError(t, err)
		assert.False(t, seen[order.OrderNo])
		seen[order.OrderNo] = true
	}
}

func TestMarkPaid(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "openid-order-3")

	order, err := Order.Create(user.ID, 0.01)
	require.NoError(t, err)

	paid, err := Order.MarkPaid(order.OrderNo, "txn123")
	require.NoError(t, err)
	require.NotNil(t, paid)

	assert.Equal(t, model.OrderStatusCompleted, paid.Status)
	assert.Equal(t, "txn123", paid.OutOrderNo)
	assert.NotNil(t, paid.PaidAt)
}

func TestMarkPaidDuplicateNotify(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "openid-order-4")

	order, err := Order.Create(user.ID, 0.01)
	require.NoError(t, err)

	first, err := Order.MarkPaid(order.OrderNo, "txn123")
	require.NoError(t, err)
	require.NotNil(t, first)

	// 重复通知只完成一次状态迁移，第二次返回nil且不报错
	second, err := Order.MarkPaid(order.OrderNo, "txn123")
	require.NoError(t, err)
	assert.Nil(t, second)

	var reloaded model.Order
	require.NoError(t, database.DB.Where("order_no = ?", order.OrderNo).First(&reloaded).Error)
	assert.Equal(t, model.OrderStatusCompleted, reloaded.Status)
	assert.Equal(t, "txn123", reloaded.OutOrderNo)
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	setupTestDB(t)

	order, err := Order.MarkPaid("20240101000000NOPE1", "txn123")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestMarkFailed(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "openid-order-5")

	order, err := Order.Create(user.ID, 0.01)
	require.NoError(t, err)

	require.NoError(t, Order.MarkFailed(order.OrderNo, "支付下单异常"))

	var reloaded model.Order
	require.NoError(t, database.DB.Where("order_no = ?", order.OrderNo).First(&reloaded).Error)
	assert.Equal(t, model.OrderStatusFailed, reloaded.Status)
	assert.Equal(t, "支付下单异常", reloaded.Note)

	// 未知订单号静默跳过
	require.NoError(t, Order.MarkFailed("20240101000000NOPE1", "whatever"))
}

func TestLastCompleted(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "openid-order-6")

	// 没有已完成订单时返回nil
	order, err := Order.LastCompleted(user.ID)
	require.NoError(t, err)
	assert.Nil(t, order)

	older := &model.Order{
		OrderNo:   "2024010100000011111",
		Status:    model.OrderStatusCompleted,
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	newer := &model.Order{
		OrderNo:   "2024010103000022222",
		Status:    model.OrderStatusCompleted,
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-1 * time.Hour),
	}
	pending := &model.Order{
		OrderNo:   "2024010104000033333",
		Status:    model.OrderStatusPaying,
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, database.DB.Create(older).Error)
	require.NoError(t, database.DB.Create(newer).Error)
	require.NoError(t, database.DB.Create(pending).Error)

	order, err = Order.LastCompleted(user.ID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, newer.OrderNo, order.OrderNo)
}
