package service

import (
	"context"
	"errors"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backend/pkg/apperror"
)

// --- DTOs ---

type CakeRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

type TrayRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

type ArticleRequest struct {
	Name           string          `json:"name" binding:"required"`
	Category       string          `json:"category"`
	Reusable       *bool           `json:"reusable"`
	StockTotal     int             `json:"stock_total" binding:"min=0"`
	StockAvailable int             `json:"stock_available" binding:"min=0"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	RentalPrice    decimal.Decimal `json:"rental_price"`
}

type CatalogFilter struct {
	Page   int
	Limit  int
	Search string
}

// CatalogService manages the three product tables orders and events price
// their lines from.
type CatalogService interface {
	ListCakes(ctx context.Context, filter CatalogFilter) ([]model.Cake, int64, error)
	GetCake(ctx context.Context, id uint) (*model.Cake, error)
	CreateCake(ctx context.Context, req CakeRequest) (*model.Cake, error)
	UpdateCake(ctx context.Context, id uint, req CakeRequest) (*model.Cake, error)
	DeleteCake(ctx context.Context, id uint) error

	ListTrays(ctx context.Context, filter CatalogFilter) ([]model.Tray, int64, error)
	GetTray(ctx context.Context, id uint) (*model.Tray, error)
	CreateTray(ctx context.Context, req TrayRequest) (*model.Tray, error)
	UpdateTray(ctx context.Context, id uint, req TrayRequest) (*model.Tray, error)
	DeleteTray(ctx context.Context, id uint) error

	ListArticles(ctx context.Context, filter CatalogFilter) ([]model.RentalArticle, int64, error)
	GetArticle(ctx context.Context, id uint) (*model.RentalArticle, error)
	CreateArticle(ctx context.Context, req ArticleRequest) (*model.RentalArticle, error)
	UpdateArticle(ctx context.Context, id uint, req ArticleRequest) (*model.RentalArticle, error)
	DeleteArticle(ctx context.Context, id uint) error
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func normalizeFilter(f CatalogFilter) CatalogFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// --- Cakes ---

func (s *catalogService) ListCakes(ctx context.Context, filter CatalogFilter) ([]model.Cake, int64, error) {
	f := normalizeFilter(filter)
	cakes, total, err := s.repo.ListCakes(ctx, f.Page, f.Limit, f.Search)
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list cakes.")
	}
	return cakes, total, nil
}

func (s *catalogService) GetCake(ctx context.Context, id uint) (*model.Cake, error) {
	cake, err := s.repo.FindCakeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Cake not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the cake.")
	}
	return cake, nil
}

func (s *catalogService) CreateCake(ctx context.Context, req CakeRequest) (*model.Cake, error) {
	if req.Price.IsNegative() {
		return nil, apperror.BadRequest("Price cannot be negative.")
	}
	cake := model.Cake{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
	}
	if err := s.repo.CreateCake(ctx, &cake); err != nil {
		return nil, apperror.FromDBError(err, "Could not create the cake.")
	}
	return &cake, nil
}

func (s *catalogService) UpdateCake(ctx context.Context, id uint, req CakeRequest) (*model.Cake, error) {
	cake, err := s.GetCake(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperror.BadRequest("Price cannot be negative.")
	}

	cake.Name = strings.TrimSpace(req.Name)
	cake.Description = req.Description
	cake.Price = req.Price

	if err := s.repo.UpdateCake(ctx, cake); err != nil {
		return nil, apperror.FromDBError(err, "Could not update the cake.")
	}
	return cake, nil
}

func (s *catalogService) DeleteCake(ctx context.Context, id uint) error {
	if _, err := s.GetCake(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCake(ctx, id); err != nil {
		return apperror.FromDBError(err, "Could not delete the cake.")
	}
	return nil
}

// --- Trays ---

func (s *catalogService) ListTrays(ctx context.Context, filter CatalogFilter) ([]model.Tray, int64, error) {
	f := normalizeFilter(filter)
	trays, total, err := s.repo.ListTrays(ctx, f.Page, f.Limit, f.Search)
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list trays.")
	}
	return trays, total, nil
}

func (s *catalogService) GetTray(ctx context.Context, id uint) (*model.Tray, error) {
	tray, err := s.repo.FindTrayByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Tray not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the tray.")
	}
	return tray, nil
}

func (s *catalogService) CreateTray(ctx context.Context, req TrayRequest) (*model.Tray, error) {
	if req.Price.IsNegative() {
		return nil, apperror.BadRequest("Price cannot be negative.")
	}
	tray := model.Tray{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
	}
	if err := s.repo.CreateTray(ctx, &tray); err != nil {
		return nil, apperror.FromDBError(err, "Could not create the tray.")
	}
	return &tray, nil
}

func (s *catalogService) UpdateTray(ctx context.Context, id uint, req TrayRequest) (*model.Tray, error) {
	tray, err := s.GetTray(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperror.BadRequest("Price cannot be negative.")
	}

	tray.Name = strings.TrimSpace(req.Name)
	tray.Description = req.Description
	tray.Price = req.Price

	if err := s.repo.UpdateTray(ctx, tray); err != nil {
		return nil, apperror.FromDBError(err, "Could not update the tray.")
	}
	return tray, nil
}

func (s *catalogService) DeleteTray(ctx context.Context, id uint) error {
	if _, err := s.GetTray(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteTray(ctx, id); err != nil {
		return apperror.FromDBError(err, "Could not delete the tray.")
	}
	return nil
}

// --- Rental articles ---

func (s *catalogService) ListArticles(ctx context.Context, filter CatalogFilter) ([]model.RentalArticle, int64, error) {
	f := normalizeFilter(filter)
	articles, total, err := s.repo.ListArticles(ctx, f.Page, f.Limit, f.Search)
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list rental articles.")
	}
	return articles, total, nil
}

func (s *catalogService) GetArticle(ctx context.Context, id uint) (*model.RentalArticle, error) {
	article, err := s.repo.FindArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Rental article not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the rental article.")
	}
	return article, nil
}

func (s *catalogService) CreateArticle(ctx context.Context, req ArticleRequest) (*model.RentalArticle, error) {
	if err := validateArticleStock(req); err != nil {
		return nil, err
	}

	article := model.RentalArticle{
		Name:           strings.TrimSpace(req.Name),
		Category:       strings.TrimSpace(req.Category),
		Reusable:       true,
		StockTotal:     req.StockTotal,
		StockAvailable: req.StockAvailable,
		UnitCost:       req.UnitCost,
		RentalPrice:    req.RentalPrice,
	}
	if req.Reusable != nil {
		article.Reusable = *req.Reusable
	}

	if err := s.repo.CreateArticle(ctx, &article); err != nil {
		return nil, apperror.FromDBError(err, "Could not create the rental article.")
	}
	return &article, nil
}

func (s *catalogService) UpdateArticle(ctx context.Context, id uint, req ArticleRequest) (*model.RentalArticle, error) {
	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateArticleStock(req); err != nil {
		return nil, err
	}

	article.Name = strings.TrimSpace(req.Name)
	article.Category = strings.TrimSpace(req.Category)
	article.StockTotal = req.StockTotal
	article.StockAvailable = req.StockAvailable
	article.UnitCost = req.UnitCost
	article.RentalPrice = req.RentalPrice
	if req.Reusable != nil {
		article.Reusable = *req.Reusable
	}

	if err := s.repo.UpdateArticle(ctx, article); err != nil {
		return nil, apperror.FromDBError(err, "Could not update the rental article.")
	}
	return article, nil
}

func (s *catalogService) DeleteArticle(ctx context.Context, id uint) error {
	if _, err := s.GetArticle(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteArticle(ctx, id); err != nil {
		return apperror.FromDBError(err, "Could not delete the rental article.")
	}
	return nil
}

func validateArticleStock(req ArticleRequest) error {
	if req.StockTotal < 0 || req.StockAvailable < 0 {
		return apperror.BadRequest("Stock counts cannot be negative.")
	}
	if req.StockAvailable > req.StockTotal {
		return apperror.BadRequest("Available stock cannot exceed total stock.")
	}
	if req.UnitCost.IsNegative() || req.RentalPrice.IsNegative() {
		return apperror.BadRequest("Cost and price cannot be negative.")
	}
	return nil
}
