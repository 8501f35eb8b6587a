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

type CreateEventRequest struct {
	CustomerID      uint              `json:"customer_id" binding:"required"`
	DeliveryDate    time.Time         `json:"delivery_date" binding:"required"`
	DeliveryType    string            `json:"delivery_type" binding:"required,oneof=PICKUP DELIVERY"`
	DeliveryAddress string            `json:"delivery_address"`
	Notes           string            `json:"notes"`
	Discount        decimal.Decimal   `json:"discount"`
	Items           []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateEventRequest = CreateEventRequest

type EventFilter struct {
	Page   int
	Limit  int
	Status string
}

// EventService drives the event lifecycle. Events carry rentable article
// lines whose stock is debited when the event is confirmed and credited back
// when it closes or is cancelled after confirmation.
type EventService interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, int64, error)
	GetEvent(ctx context.Context, id uint) (*model.Event, error)
	CreateEvent(ctx context.Context, actorID string, req CreateEventRequest) (*model.Event, error)
	UpdateEvent(ctx context.Context, actorID string, id uint, req UpdateEventRequest) (*model.Event, error)
	UpdateEventStatus(ctx context.Context, actorID string, id uint, target string) (*model.Event, error)
	DeleteEvent(ctx context.Context, actorID string, id uint) error
}

type eventService struct {
	eventRepo    repository.EventRepository
	customerRepo repository.CustomerRepository
	catalogRepo  repository.CatalogRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	pricer       *priceCalculator
	hub          *ws.Hub
}

func NewEventService(
	eventRepo repository.EventRepository,
	customerRepo repository.CustomerRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) EventService {
	return &eventService{
		eventRepo:    eventRepo,
		customerRepo: customerRepo,
		catalogRepo:  catalogRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		pricer:       newPriceCalculator(catalogRepo),
		hub:          hub,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, int64, error) {
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

	events, total, err := s.eventRepo.List(ctx, filter.Page, filter.Limit, statusID)
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list events.")
	}
	return events, total, nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*model.Event, error) {
	event, err := s.eventRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Event not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the event.")
	}
	return event, nil
}

func (s *eventService) CreateEvent(ctx context.Context, actorID string, req CreateEventRequest) (*model.Event, error) {
	if err := s.ensureCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if req.DeliveryType == model.DeliveryTypeDelivery && req.DeliveryAddress == "" {
		return nil, apperror.BadRequest("Delivery events need a delivery address.")
	}

	priced, itemCount, total, err := s.pricer.priceLines(ctx, req.Items, true)
	if err != nil {
		return nil, err
	}
	discount, finalTotal := applyDiscount(total, req.Discount)

	event := model.Event{
		CustomerID:      req.CustomerID,
		DeliveryDate:    req.DeliveryDate,
		DeliveryType:    req.DeliveryType,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		ItemCount:       itemCount,
		DiscountTotal:   discount,
		FinalTotal:      finalTotal,
		StatusID:        int(model.StatusPending),
		Items:           eventItems(0, priced),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.eventRepo.Create(txCtx, &event); err != nil {
			return apperror.FromDBError(err, "Could not create the event.")
		}
		return s.logEventAudit(txCtx, actorID, model.ActionCreateEvent, event.ID, map[string]interface{}{
			"customer_id": event.CustomerID,
			"item_count":  event.ItemCount,
			"final_total": event.FinalTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetEvent(ctx, event.ID)
}

func (s *eventService) UpdateEvent(ctx context.Context, actorID string, id uint, req UpdateEventRequest) (*model.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status() != model.StatusPending {
		return nil, apperror.Conflict("Only pending events can be edited.")
	}
	if err := s.ensureCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if req.DeliveryType == model.DeliveryTypeDelivery && req.DeliveryAddress == "" {
		return nil, apperror.BadRequest("Delivery events need a delivery address.")
	}

	priced, itemCount, total, err := s.pricer.priceLines(ctx, req.Items, true)
	if err != nil {
		return nil, err
	}
	discount, finalTotal := applyDiscount(total, req.Discount)

	event.CustomerID = req.CustomerID
	event.DeliveryDate = req.DeliveryDate
	event.DeliveryType = req.DeliveryType
	event.DeliveryAddress = req.DeliveryAddress
	event.Notes = req.Notes
	event.ItemCount = itemCount
	event.DiscountTotal = discount
	event.FinalTotal = finalTotal
	event.Items = nil

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.eventRepo.DeleteItems(txCtx, id); err != nil {
			return apperror.FromDBError(err, "Could not replace the event lines.")
		}
		if err := s.eventRepo.UpdateHeader(txCtx, event); err != nil {
			return apperror.FromDBError(err, "Could not update the event.")
		}
		if err := s.eventRepo.CreateItems(txCtx, eventItems(id, priced)); err != nil {
			return apperror.FromDBError(err, "Could not replace the event lines.")
		}
		return s.logEventAudit(txCtx, actorID, model.ActionUpdateEvent, id, map[string]interface{}{
			"item_count":  itemCount,
			"final_total": finalTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetEvent(ctx, id)
}

func (s *eventService) UpdateEventStatus(ctx context.Context, actorID string, id uint, target string) (*model.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	targetStatus, ok := model.ParseStatus(target)
	if !ok {
		return nil, apperror.BadRequest("Unknown status: " + target)
	}

	from := event.Status()
	if !from.CanTransitionEvent(targetStatus) {
		return nil, apperror.BadRequest(fmt.Sprintf(
			"Invalid status transition from %s to %s.", from, targetStatus))
	}

	// Stock moves with the transition, inside the same transaction: the
	// status write and the article adjustments commit or roll back together.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		switch {
		case from == model.StatusPending && targetStatus == model.StatusConfirmed:
			if err := s.adjustArticleStock(txCtx, event.Items, stockDebit); err != nil {
				return err
			}
		case from == model.StatusConfirmed &&
			(targetStatus == model.StatusClosed || targetStatus == model.StatusCancelled):
			if err := s.adjustArticleStock(txCtx, event.Items, stockCredit); err != nil {
				return err
			}
		}

		if err := s.eventRepo.UpdateStatus(txCtx, id, int(targetStatus), time.Now()); err != nil {
			return apperror.FromDBError(err, "Could not update the event status.")
		}
		return s.logEventAudit(txCtx, actorID, model.ActionEventTransition, id, map[string]interface{}{
			"from": from.Label(),
			"to":   targetStatus.Label(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Notify(ws.StatusNotification{
			Entity:     "event",
			EntityID:   id,
			FromStatus: from.Label(),
			ToStatus:   targetStatus.Label(),
		})
	}

	return s.GetEvent(ctx, id)
}

func (s *eventService) DeleteEvent(ctx context.Context, actorID string, id uint) error {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if event.Status() != model.StatusPending {
		return apperror.Conflict("Only pending events can be deleted.")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.eventRepo.Delete(txCtx, id); err != nil {
			return apperror.FromDBError(err, "Could not delete the event.")
		}
		return s.logEventAudit(txCtx, actorID, model.ActionDeleteEvent, id, nil)
	})
}

// --- Stock adjustment ---

type stockDirection int

const (
	stockDebit  stockDirection = iota // confirmation takes articles out
	stockCredit                       // closing or cancelling returns them
)

// adjustArticleStock applies the event's aggregate article demand to the
// stock table. All lines are validated before any write, so either every
// article moves or none does. Credits clamp at StockTotal: returning more
// than the article owns just tops it up.
func (s *eventService) adjustArticleStock(ctx context.Context, items []model.EventItem, dir stockDirection) error {
	demand := map[uint]int{}
	for _, item := range items {
		if item.ItemType == model.ItemTypeArticle {
			demand[item.ProductID] += item.Quantity
		}
	}
	if len(demand) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}

	articles, err := s.catalogRepo.FindArticlesByIDs(ctx, ids)
	if err != nil {
		return apperror.FromDBError(err, "Could not load the event's rental articles.")
	}
	byID := make(map[uint]model.RentalArticle, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	// Validate everything first.
	next := make(map[uint]int, len(demand))
	for id, qty := range demand {
		article, ok := byID[id]
		if !ok {
			return apperror.NotFound(fmt.Sprintf("Unknown rental article with id %d.", id))
		}
		switch dir {
		case stockDebit:
			if qty > article.StockAvailable {
				return apperror.Conflict(fmt.Sprintf(
					"Insufficient stock for %q: requested %d, available %d.",
					article.Name, qty, article.StockAvailable))
			}
			next[id] = article.StockAvailable - qty
		case stockCredit:
			restored := article.StockAvailable + qty
			if restored > article.StockTotal {
				restored = article.StockTotal
			}
			next[id] = restored
		}
	}

	// Then write everything.
	for id, available := range next {
		if err := s.catalogRepo.UpdateArticleStock(ctx, id, available); err != nil {
			return apperror.FromDBError(err, "Could not adjust article stock.")
		}
	}
	return nil
}

// --- Helpers ---

func (s *eventService) ensureCustomer(ctx context.Context, customerID uint) error {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Customer not found.")
		}
		return apperror.FromDBError(err, "Could not fetch the customer.")
	}
	return nil
}

func eventItems(eventID uint, priced []pricedLine) []model.EventItem {
	items := make([]model.EventItem, 0, len(priced))
	for _, line := range priced {
		items = append(items, model.EventItem{
			EventID:   eventID,
			ItemType:  line.ItemType,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return items
}

func (s *eventService) logEventAudit(ctx context.Context, actorID, action string, eventID uint, payload map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	entry := model.AuditLog{
		UserID:   uid,
		Action:   action,
		EntityID: fmt.Sprintf("%d", eventID),
		Details:  string(details),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return apperror.FromDBError(err, "Could not write the audit log.")
	}
	return nil
}
