package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository serves the product tables the pricing calculator reads
// from: cakes, trays and rentable articles. Article stock writes also live
// here because the stock adjuster routes through the same table.
type CatalogRepository interface {
	CreateCake(ctx context.Context, cake *model.Cake) error
	UpdateCake(ctx context.Context, cake *model.Cake) error
	DeleteCake(ctx context.Context, id uint) error
	FindCakeByID(ctx context.Context, id uint) (*model.Cake, error)
	ListCakes(ctx context.Context, page, limit int, search string) ([]model.Cake, int64, error)

	CreateTray(ctx context.Context, tray *model.Tray) error
	UpdateTray(ctx context.Context, tray *model.Tray) error
	DeleteTray(ctx context.Context, id uint) error
	FindTrayByID(ctx context.Context, id uint) (*model.Tray, error)
	ListTrays(ctx context.Context, page, limit int, search string) ([]model.Tray, int64, error)

	CreateArticle(ctx context.Context, article *model.RentalArticle) error
	UpdateArticle(ctx context.Context, article *model.RentalArticle) error
	DeleteArticle(ctx context.Context, id uint) error
	FindArticleByID(ctx context.Context, id uint) (*model.RentalArticle, error)
	FindArticlesByIDs(ctx context.Context, ids []uint) ([]model.RentalArticle, error)
	ListArticles(ctx context.Context, page, limit int, search string) ([]model.RentalArticle, int64, error)
	UpdateArticleStock(ctx context.Context, id uint, available int) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// --- Cakes ---

func (r *catalogRepository) CreateCake(ctx context.Context, cake *model.Cake) error {
	return GetDB(ctx, r.db).Create(cake).Error
}

func (r *catalogRepository) UpdateCake(ctx context.Context, cake *model.Cake) error {
	return GetDB(ctx, r.db).Save(cake).Error
}

func (r *catalogRepository) DeleteCake(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Cake{}).Error
}

func (r *catalogRepository) FindCakeByID(ctx context.Context, id uint) (*model.Cake, error) {
	var cake model.Cake
	if err := GetDB(ctx, r.db).First(&cake, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cake, nil
}

func (r *catalogRepository) ListCakes(ctx context.Context, page, limit int, search string) ([]model.Cake, int64, error) {
	var cakes []model.Cake
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Cake{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&cakes).Error; err != nil {
		return nil, 0, err
	}
	return cakes, total, nil
}

// --- Trays ---

func (r *catalogRepository) CreateTray(ctx context.Context, tray *model.Tray) error {
	return GetDB(ctx, r.db).Create(tray).Error
}

func (r *catalogRepository) UpdateTray(ctx context.Context, tray *model.Tray) error {
	return GetDB(ctx, r.db).Save(tray).Error
}

func (r *catalogRepository) DeleteTray(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Tray{}).Error
}

func (r *catalogRepository) FindTrayByID(ctx context.Context, id uint) (*model.Tray, error) {
	var tray model.Tray
	if err := GetDB(ctx, r.db).First(&tray, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tray, nil
}

func (r *catalogRepository) ListTrays(ctx context.Context, page, limit int, search string) ([]model.Tray, int64, error) {
	var trays []model.Tray
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Tray{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&trays).Error; err != nil {
		return nil, 0, err
	}
	return trays, total, nil
}

// --- Rental articles ---

func (r *catalogRepository) CreateArticle(ctx context.Context, article *model.RentalArticle) error {
	return GetDB(ctx, r.db).Create(article).Error
}

func (r *catalogRepository) UpdateArticle(ctx context.Context, article *model.RentalArticle) error {
	return GetDB(ctx, r.db).Save(article).Error
}

func (r *catalogRepository) DeleteArticle(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RentalArticle{}).Error
}

func (r *catalogRepository) FindArticleByID(ctx context.Context, id uint) (*model.RentalArticle, error) {
	var article model.RentalArticle
	if err := GetDB(ctx, r.db).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *catalogRepository) FindArticlesByIDs(ctx context.Context, ids []uint) ([]model.RentalArticle, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var articles []model.RentalArticle
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *catalogRepository) ListArticles(ctx context.Context, page, limit int, search string) ([]model.RentalArticle, int64, error) {
	var articles []model.RentalArticle
	var total int64

	db := GetDB(ctx, r.db).Model(&model.RentalArticle{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&articles).Error; err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *catalogRepository) UpdateArticleStock(ctx context.Context, id uint, available int) error {
	return GetDB(ctx, r.db).Model(&model.RentalArticle{}).
		Where("id = ?", id).
		Update("stock_available", available).Error
}
