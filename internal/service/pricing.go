package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backend/pkg/apperror"
)

// LineItemRequest is one requested line of an order or event. The ItemType
// tag selects which catalog table ProductID is resolved against.
type LineItemRequest struct {
	ItemType  string `json:"item_type" binding:"required,oneof=CAKE TRAY ARTICLE"`
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// pricedLine is a line after catalog resolution, carrying the unit price
// snapshot that will be persisted with the item.
type pricedLine struct {
	ItemType  string
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// priceCalculator resolves requested lines against the catalog, snapshotting
// unit prices and summing the gross total. Article lines are additionally
// pre-checked against available stock so an order that could never be
// fulfilled is rejected at write time rather than at confirmation.
type priceCalculator struct {
	catalog repository.CatalogRepository
}

func newPriceCalculator(catalog repository.CatalogRepository) *priceCalculator {
	return &priceCalculator{catalog: catalog}
}

// priceLines validates and prices every requested line. When allowArticles is
// false (orders), ARTICLE lines are rejected outright.
func (p *priceCalculator) priceLines(ctx context.Context, lines []LineItemRequest, allowArticles bool) ([]pricedLine, int, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, 0, decimal.Zero, apperror.BadRequest("At least one line item is required.")
	}

	priced := make([]pricedLine, 0, len(lines))
	itemCount := 0
	total := decimal.Zero

	// Aggregate article demand across lines so two lines for the same
	// article cannot each pass the stock check individually.
	articleDemand := map[uint]int{}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, decimal.Zero, apperror.BadRequest("Line quantities must be positive.")
		}

		var unitPrice decimal.Decimal
		switch line.ItemType {
		case model.ItemTypeCake:
			cake, err := p.catalog.FindCakeByID(ctx, line.ProductID)
			if err != nil {
				return nil, 0, decimal.Zero, missingProduct(err, "cake", line.ProductID)
			}
			unitPrice = cake.Price
		case model.ItemTypeTray:
			tray, err := p.catalog.FindTrayByID(ctx, line.ProductID)
			if err != nil {
				return nil, 0, decimal.Zero, missingProduct(err, "tray", line.ProductID)
			}
			unitPrice = tray.Price
		case model.ItemTypeArticle:
			if !allowArticles {
				return nil, 0, decimal.Zero, apperror.BadRequest("Rental articles can only be added to events.")
			}
			article, err := p.catalog.FindArticleByID(ctx, line.ProductID)
			if err != nil {
				return nil, 0, decimal.Zero, missingProduct(err, "rental article", line.ProductID)
			}
			articleDemand[article.ID] += line.Quantity
			if articleDemand[article.ID] > article.StockAvailable {
				return nil, 0, decimal.Zero, apperror.Conflict(fmt.Sprintf(
					"Insufficient stock for %q: requested %d, available %d.",
					article.Name, articleDemand[article.ID], article.StockAvailable))
			}
			unitPrice = article.RentalPrice
		default:
			return nil, 0, decimal.Zero, apperror.BadRequest("Unknown item type: " + line.ItemType)
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		total = total.Add(unitPrice.Mul(qty))
		itemCount += line.Quantity
		priced = append(priced, pricedLine{
			ItemType:  line.ItemType,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		})
	}

	return priced, itemCount, total, nil
}

// applyDiscount clamps the discount into [0, total] and returns the clamped
// discount and the final total. A discount larger than the gross total floors
// the final price at zero instead of going negative.
func applyDiscount(total, discount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(total) {
		discount = total
	}
	return discount, total.Sub(discount)
}

func missingProduct(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(fmt.Sprintf("Unknown %s with id %d.", kind, id))
	}
	return apperror.FromDBError(err, "Could not resolve the "+kind+".")
}
