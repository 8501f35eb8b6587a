package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateItems(ctx context.Context, items []model.OrderItem) error
	DeleteItems(ctx context.Context, orderID uint) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByIDWithItems(ctx context.Context, id uint) (*model.Order, error)
	UpdateHeader(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, id uint, statusID int, at time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int, statusID int) ([]model.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *orderRepository) DeleteItems(ctx context.Context, orderID uint) error {
	return GetDB(ctx, r.db).Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDWithItems(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Customer").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateHeader(ctx context.Context, order *model.Order) error {
	// Save without Items so line replacement stays an explicit two-step
	// inside the surrounding transaction.
	return GetDB(ctx, r.db).Omit("Items", "Customer").Save(order).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, statusID int, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status_id": statusID, "updated_at": at}).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Order{}).Error
}

func (r *orderRepository) List(ctx context.Context, page, limit int, statusID int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Order{})
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
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
