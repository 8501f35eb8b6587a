package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	CreateItems(ctx context.Context, items []model.EventItem) error
	DeleteItems(ctx context.Context, eventID uint) error
	FindByID(ctx context.Context, id uint) (*model.Event, error)
	FindByIDWithItems(ctx context.Context, id uint) (*model.Event, error)
	UpdateHeader(ctx context.Context, event *model.Event) error
	UpdateStatus(ctx context.Context, id uint, statusID int, at time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int, statusID int) ([]model.Event, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	return GetDB(ctx, r.db).Create(event).Error
}

func (r *eventRepository) CreateItems(ctx context.Context, items []model.EventItem) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *eventRepository) DeleteItems(ctx context.Context, eventID uint) error {
	return GetDB(ctx, r.db).Where("event_id = ?", eventID).Delete(&model.EventItem{}).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	if err := GetDB(ctx, r.db).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDWithItems(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Customer").
		First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) UpdateHeader(ctx context.Context, event *model.Event) error {
	return GetDB(ctx, r.db).Omit("Items", "Customer").Save(event).Error
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id uint, statusID int, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status_id": statusID, "updated_at": at}).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("event_id = ?", id).Delete(&model.EventItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Event{}).Error
}

func (r *eventRepository) List(ctx context.Context, page, limit int, statusID int) ([]model.Event, int64, error) {
	var events []model.Event
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Event{})
	if statusID > 0 {
		db = db.Where("status_id = ?", statusID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
