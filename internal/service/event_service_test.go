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

func eventRequest(customerID uint, items []LineItemRequest, discount string) CreateEventRequest {
	return CreateEventRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now().Add(72 * time.Hour),
		DeliveryType: model.DeliveryTypePickup,
		Discount:     decimal.RequireFromString(discount),
		Items:        items,
	}
}

func TestCreateEventWithArticleLines(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "15.00")
	article := createArticle(t, db, "Chocolate Fountain", 5, 5, "30.00")

	event, err := svc.CreateEvent(ctx, uuid.NewString(), eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 2},
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 2},
	}, "0"))
	require.NoError(t, err)

	// 2*15 + 2*30
	assert.True(t, event.FinalTotal.Equal(decimal.RequireFromString("90.00")))
	// Creation alone never moves stock; that happens at confirmation.
	assert.Equal(t, 5, articleStock(t, db, article.ID))
}

func TestCreateEventStockPrecheck(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Cake Stand", 10, 3, "4.00")

	_, err := svc.CreateEvent(context.Background(), uuid.NewString(), eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 4},
	}, "0"))
	assert.Equal(t, 409, apperror.StatusOf(err))
}

func TestCreateEventAggregatesArticleDemandAcrossLines(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Cake Stand", 10, 3, "4.00")

	// Two lines of 2 for the same article exceed the 3 available even though
	// each line alone would pass.
	_, err := svc.CreateEvent(context.Background(), uuid.NewString(), eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 2},
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 2},
	}, "0"))
	assert.Equal(t, 409, apperror.StatusOf(err))
}

func TestConfirmEventDebitsStock(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Chocolate Fountain", 10, 10, "30.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 3},
	}, "0"))
	require.NoError(t, err)

	event, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, event.Status())
	assert.Equal(t, 7, articleStock(t, db, article.ID))
}

func TestIllegalEventTransitionIsBadRequest(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Chocolate Fountain", 10, 10, "30.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 3},
	}, "0"))
	require.NoError(t, err)

	// pending -> closed is not reachable directly.
	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "closed")
	assert.Equal(t, 400, apperror.StatusOf(err))

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	require.NoError(t, err)

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "pending")
	assert.Equal(t, 400, apperror.StatusOf(err))

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "closed")
	require.NoError(t, err)

	// Closed is terminal.
	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	assert.Equal(t, 400, apperror.StatusOf(err))

	// Rejected transitions never touch stock.
	assert.Equal(t, 10, articleStock(t, db, article.ID))
}

func TestCloseEventCreditsStock(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Chocolate Fountain", 10, 10, "30.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 3},
	}, "0"))
	require.NoError(t, err)

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	require.NoError(t, err)
	require.Equal(t, 7, articleStock(t, db, article.ID))

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "closed")
	require.NoError(t, err)
	assert.Equal(t, 10, articleStock(t, db, article.ID))
}

func TestCancelConfirmedEventCreditsStock(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Cake Stand", 6, 6, "4.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 2},
	}, "0"))
	require.NoError(t, err)

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	require.NoError(t, err)
	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "cancelled")
	require.NoError(t, err)

	assert.Equal(t, 6, articleStock(t, db, article.ID))
}

func TestCancelPendingEventLeavesStockAlone(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Cake Stand", 6, 6, "4.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 2},
	}, "0"))
	require.NoError(t, err)

	// Nothing was debited, so nothing is credited.
	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, 6, articleStock(t, db, article.ID))
}

func TestConfirmEventInsufficientStockIsAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	plenty := createArticle(t, db, "Cake Stand", 10, 10, "4.00")
	scarce := createArticle(t, db, "Chocolate Fountain", 5, 5, "30.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: plenty.ID, Quantity: 2},
		{ItemType: model.ItemTypeArticle, ProductID: scarce.ID, Quantity: 3},
	}, "0"))
	require.NoError(t, err)

	// Another event drains the scarce article between creation and confirmation.
	require.NoError(t, db.Model(&model.RentalArticle{}).Where("id = ?", scarce.ID).
		Update("stock_available", 1).Error)

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	assert.Equal(t, 409, apperror.StatusOf(err))

	// Neither article moved and the event is still pending.
	assert.Equal(t, 10, articleStock(t, db, plenty.ID))
	assert.Equal(t, 1, articleStock(t, db, scarce.ID))
	reread, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reread.Status())
}

func TestCreditClampsAtStockTotal(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	article := createArticle(t, db, "Cake Stand", 5, 5, "4.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeArticle, ProductID: article.ID, Quantity: 2},
	}, "0"))
	require.NoError(t, err)

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	require.NoError(t, err)
	require.Equal(t, 3, articleStock(t, db, article.ID))

	// Manual restock while the event is out: the credit must not push
	// availability past the total.
	require.NoError(t, db.Model(&model.RentalArticle{}).Where("id = ?", article.ID).
		Update("stock_available", 5).Error)

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "closed")
	require.NoError(t, err)
	assert.Equal(t, 5, articleStock(t, db, article.ID))
}

func TestUpdateEventOnlyWhilePending(t *testing.T) {
	db := newTestDB(t)
	svc := newEventService(db)
	ctx := context.Background()
	actor := uuid.NewString()

	customer := createCustomer(t, db)
	cake := createCake(t, db, "15.00")

	event, err := svc.CreateEvent(ctx, actor, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 1},
	}, "0"))
	require.NoError(t, err)

	_, err = svc.UpdateEventStatus(ctx, actor, event.ID, "confirmed")
	require.NoError(t, err)

	_, err = svc.UpdateEvent(ctx, actor, event.ID, eventRequest(customer.ID, []LineItemRequest{
		{ItemType: model.ItemTypeCake, ProductID: cake.ID, Quantity: 3},
	}, "0"))
	assert.Equal(t, 409, apperror.StatusOf(err))

	err = svc.DeleteEvent(ctx, actor, event.ID)
	assert.Equal(t, 409, apperror.StatusOf(err))
}
