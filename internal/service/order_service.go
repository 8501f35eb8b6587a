package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backend/pkg/apperror"
)

// --- DTOs ---

type CreateOrderRequest struct {
	CustomerID      uint              `json:"customer_id" binding:"required"`
	DeliveryDate    time.Time         `json:"delivery_date" binding:"required"`
	DeliveryType    string            `json:"delivery_type" binding:"required,oneof=PICKUP DELIVERY"`
	DeliveryAddress string            `json:"delivery_address"`
	Notes           string            `json:"notes"`
	Discount        decimal.Decimal   `json:"discount"`
	Items           []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderRequest = CreateOrderRequest

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderFilter struct {
	Page   int
	Limit  int
	Status string // label filter; empty means all
}

// OrderService drives the order lifecycle: pending orders are fully mutable,
// confirmed and later states only accept transitions.
type OrderService interface {
	ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (*model.Order, error)
	UpdateOrder(ctx context.Context, actorID string, id uint, req UpdateOrderRequest) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, actorID string, id uint, target string) (*model.Order, error)
	DeleteOrder(ctx context.Context, actorID string, id uint) error
}

type orderService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	pricer       *priceCalculator
	hub          *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		pricer:       newPriceCalculator(catalogRepo),
		hub:          hub,
	}
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	statusID := 0
	if filter.Status != "" {
		status, ok := model.ParseStatus(filter.Status)
		if !ok {
			return nil, 0, apperror.BadRequest("Unknown status: " + filter.Status)
		}
		statusID = int(status)
	}

	orders, total, err := s.orderRepo.List(ctx, filter.Page, filter.Limit, statusID)
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list orders.")
	}
	return orders, total, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the order.")
	}
	return order, nil
}

func (s *orderService) CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (*model.Order, error) {
	if err := s.ensureCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if req.DeliveryType == model.DeliveryTypeDelivery && req.DeliveryAddress == "" {
		return nil, apperror.BadRequest("Delivery orders need a delivery address.")
	}

	priced, itemCount, total, err := s.pricer.priceLines(ctx, req.Items, false)
	if err != nil {
		return nil, err
	}
	discount, finalTotal := applyDiscount(total, req.Discount)

	order := model.Order{
		CustomerID:      req.CustomerID,
		DeliveryDate:    req.DeliveryDate,
		DeliveryType:    req.DeliveryType,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		ItemCount:       itemCount,
		DiscountTotal:   discount,
		FinalTotal:      finalTotal,
		StatusID:        int(model.StatusPending),
		Items:           orderItems(0, priced),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Create(txCtx, &order); err != nil {
			return apperror.FromDBError(err, "Could not create the order.")
		}
		return s.logOrderAudit(txCtx, actorID, model.ActionCreateOrder, order.ID, map[string]interface{}{
			"customer_id": order.CustomerID,
			"item_count":  order.ItemCount,
			"final_total": order.FinalTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, order.ID)
}

func (s *orderService) UpdateOrder(ctx context.Context, actorID string, id uint, req UpdateOrderRequest) (*model.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status() != model.StatusPending {
		return nil, apperror.Conflict("Only pending orders can be edited.")
	}
	if err := s.ensureCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if req.DeliveryType == model.DeliveryTypeDelivery && req.DeliveryAddress == "" {
		return nil, apperror.BadRequest("Delivery orders need a delivery address.")
	}

	priced, itemCount, total, err := s.pricer.priceLines(ctx, req.Items, false)
	if err != nil {
		return nil, err
	}
	discount, finalTotal := applyDiscount(total, req.Discount)

	order.CustomerID = req.CustomerID
	order.DeliveryDate = req.DeliveryDate
	order.DeliveryType = req.DeliveryType
	order.DeliveryAddress = req.DeliveryAddress
	order.Notes = req.Notes
	order.ItemCount = itemCount
	order.DiscountTotal = discount
	order.FinalTotal = finalTotal
	order.Items = nil

	// Full line replacement: drop the old lines and insert the repriced set
	// inside one transaction so readers never see a half-replaced order.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.DeleteItems(txCtx, id); err != nil {
			return apperror.FromDBError(err, "Could not replace the order lines.")
		}
		if err := s.orderRepo.UpdateHeader(txCtx, order); err != nil {
			return apperror.FromDBError(err, "Could not update the order.")
		}
		if err := s.orderRepo.CreateItems(txCtx, orderItems(id, priced)); err != nil {
			return apperror.FromDBError(err, "Could not replace the order lines.")
		}
		return s.logOrderAudit(txCtx, actorID, model.ActionUpdateOrder, id, map[string]interface{}{
			"item_count":  itemCount,
			"final_total": finalTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, id)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, actorID string, id uint, target string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	targetStatus, ok := model.ParseStatus(target)
	if !ok {
		return nil, apperror.BadRequest("Unknown status: " + target)
	}

	from := order.Status()
	if !from.CanTransitionOrder(targetStatus) {
		return nil, apperror.BadRequest(fmt.Sprintf(
			"Invalid status transition from %s to %s.", from, targetStatus))
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.UpdateStatus(txCtx, id, int(targetStatus), time.Now()); err != nil {
			return apperror.FromDBError(err, "Could not update the order status.")
		}
		return s.logOrderAudit(txCtx, actorID, model.ActionOrderTransition, id, map[string]interface{}{
			"from": from.Label(),
			"to":   targetStatus.Label(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Notify(ws.StatusNotification{
			Entity:     "order",
			EntityID:   id,
			FromStatus: from.Label(),
			ToStatus:   targetStatus.Label(),
		})
	}

	return s.GetOrder(ctx, id)
}

func (s *orderService) DeleteOrder(ctx context.Context, actorID string, id uint) error {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status() != model.StatusPending {
		return apperror.Conflict("Only pending orders can be deleted.")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Delete(txCtx, id); err != nil {
			return apperror.FromDBError(err, "Could not delete the order.")
		}
		return s.logOrderAudit(txCtx, actorID, model.ActionDeleteOrder, id, nil)
	})
}

// --- Helpers ---

func (s *orderService) ensureCustomer(ctx context.Context, customerID uint) error {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Customer not found.")
		}
		return apperror.FromDBError(err, "Could not fetch the customer.")
	}
	return nil
}

func orderItems(orderID uint, priced []pricedLine) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(priced))
	for _, line := range priced {
		items = append(items, model.OrderItem{
			OrderID:   orderID,
			ItemType:  line.ItemType,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return items
}

func (s *orderService) logOrderAudit(ctx context.Context, actorID, action string, orderID uint, payload map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	entry := model.AuditLog{
		UserID:   uid,
		Action:   action,
		EntityID: fmt.Sprintf("%d", orderID),
		Details:  string(details),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return apperror.FromDBError(err, "Could not write the audit log.")
	}
	return nil
}
