package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRequest(customerID uint, items []LineItemRequest, discount string) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now().Add(48 * time.Hour),
		DeliveryType: model.DeliveryTypePickup,
		Discount:     decimal.RequireFromString(discount),
		Items:        items,
	}
}

func TestCreateOrderSnapshotsPricesAndTotals(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "10.50")
	tray := createTray(t, db, "20.00")

	order, err := svc.CreateOrder(ctx, actor, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 2},
		{ItemType: model.ItemTypeTray, ProductID: tray.ID, Quantity: 1},
	}, "5.00"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, order.Status())
	assert.Equal(t, 3, order.ItemCount)
	// 2*10.50 + 1*20.00 - 5.00
	assert.True(t, order.FinalTotal.Equal(decimal.RequireFromString("36.00")),
		"got %s", order.FinalTotal)

	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		if item.ItemType == model.ItemTypeCake {
			assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("10.50")))
		}
	}

	// Catalog price changes must not rewrite the snapshot.
	require.NoError(t, db.Model(&model.Cake{}).Where("id = ?", cake.ID).
		Update("price", decimal.RequireFromString("99.99")).Error)
	reread, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	for _, item := range reread.Items {
		if item.ItemType == model.ItemTypeCake {
			assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("10.50")))
		}
	}
}

func TestCreateOrderClampsDiscount(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "10.00")

	order, err := svc.CreateOrder(ctx, uuid.NewString(), orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 1},
	}, "50.00"))
	require.NoError(t, err)

	assert.True(t, order.FinalTotal.IsZero(), "final total floors at zero, got %s", order.FinalTotal)
	assert.True(t, order.DiscountTotal.Equal(decimal.RequireFromString("10.00")))
}

func TestCreateOrderRejectsArticleLines(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Cake Stand", 10, 10, "4.00")

	_, err := svc.CreateOrder(context.Background(), uuid.NewString(), orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 1},
	}, "0"))
	assert.Equal(t, 400, apperror.StatusOf(err))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	customer := createCustomer(t, db)
	_, err := svc.CreateOrder(context.Background(), uuid.NewString(), orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: 999, Quantity: 1},
	}, "0"))
	assert.Equal(t, 404, apperror.StatusOf(err))
}

func TestUpdateOrderReplacesLines(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "10.00")
	tray := createTray(t, db, "25.00")

	order, err := svc.CreateOrder(ctx, actor, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 2},
	}, "0"))
	require.NoError(t, err)

	updated, err := svc.UpdateOrder(ctx, actor, order.ID, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeTray, ProductID: tray.ID, Quantity: 1},
	}, "0"))
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, model.ItemTypeTray, updated.Items[0].ItemType)
	assert.True(t, updated.FinalTotal.Equal(decimal.RequireFromString("25.00")))

	// No orphaned lines left behind.
	var count int64
	require.NoError(t, db.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateOrderOnlyWhilePending(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "10.00")

	order, err := svc.CreateOrder(ctx, actor, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 1},
	}, "0"))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, actor, order.ID, "confirmed")
	require.NoError(t, err)

	_, err = svc.UpdateOrder(ctx, actor, order.ID, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 5},
	}, "0"))
	assert.Equal(t, 409, apperror.StatusOf(err))

	err = svc.DeleteOrder(ctx, actor, order.ID)
	assert.Equal(t, 409, apperror.StatusOf(err))
}

func TestOrderStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "10.00")

	order, err := svc.CreateOrder(ctx, actor, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 1},
	}, "0"))
	require.NoError(t, err)

	// pending -> closed is not reachable directly.
	_, err = svc.UpdateOrderStatus(ctx, actor, order.ID, "closed")
	assert.Equal(t, 400, apperror.StatusOf(err))

	order, err = svc.UpdateOrderStatus(ctx, actor, order.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, order.Status())

	// Confirmed orders cannot be cancelled.
	_, err = svc.UpdateOrderStatus(ctx, actor, order.ID, "cancelled")
	assert.Equal(t, 400, apperror.StatusOf(err))

	order, err = svc.UpdateOrderStatus(ctx, actor, order.ID, "closed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, order.Status())

	// Closed is terminal.
	_, err = svc.UpdateOrderStatus(ctx, actor, order.ID, "pending")
	assert.Equal(t, 400, apperror.StatusOf(err))

	// Unknown labels are rejected before the transition check.
	_, err = svc.UpdateOrderStatus(ctx, actor, order.ID, "delivered")
	assert.Equal(t, 400, apperror.StatusOf(err))
}

func TestDeletePendingOrderRemovesLines(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "10.00")

	order, err := svc.CreateOrder(ctx, actor, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 1},
	}, "0"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, actor, order.ID))

	_, err = svc.GetOrder(ctx, order.ID)
	assert.Equal(t, 404, apperror.StatusOf(err))

	var count int64
	require.NoError(t, db.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "10.00")

	first, err := svc.CreateOrder(ctx, actor, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 1},
	}, "0"))
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, actor, orderRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 2},
	}, "0"))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, actor, first.ID, "confirmed")
	require.NoError(t, err)

	confirmed, total, err := svc.ListOrders(ctx, OrderFilter{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	_, _, err = svc.ListOrders(ctx, OrderFilter{Status: "nope"})
	assert.Equal(t, 400, apperror.StatusOf(err))
}
