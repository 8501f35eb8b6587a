package service

import (
	"fmt"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database and migrates the full
// schema. The shared-cache DSN keeps the database alive across the pool's
// connections for the duration of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Permission{},
		&model.Group{},
		&model.UserPermission{},
		&model.UserGroup{},
		&model.GroupPermission{},
		&model.Customer{},
		&model.Cake{},
		&model.Tray{},
		&model.RentalArticle{},
		&model.Order{},
		&model.OrderItem{},
		&model.Event{},
		&model.EventItem{},
		&model.AuditLog{},
	))

	return db
}

// --- Fixtures ---

func createCustomer(t *testing.T, db *gorm.DB) model.Customer {
	t.Helper()
	customer := model.Customer{Name: "Ana Martinez", Phone: "555-0101"}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func createCake(t *testing.T, db *gorm.DB, price string) model.Cake {
	t.Helper()
	cake := model.Cake{Name: "Chocolate Cake", Price: decimal.RequireFromString(price)}
	require.NoError(t, db.Create(&cake).Error)
	return cake
}

func createTray(t *testing.T, db *gorm.DB, price string) model.Tray {
	t.Helper()
	tray := model.Tray{Name: "Assorted Tray", Price: decimal.RequireFromString(price)}
	require.NoError(t, db.Create(&tray).Error)
	return tray
}

func createArticle(t *testing.T, db *gorm.DB, name string, total, available int, rentalPrice string) model.RentalArticle {
	t.Helper()
	article := model.RentalArticle{
		Name:           name,
		Reusable:       true,
		StockTotal:     total,
		StockAvailable: available,
		UnitCost:       decimal.Zero,
		RentalPrice:    decimal.RequireFromString(rentalPrice),
	}
	require.NoError(t, db.Create(&article).Error)
	return article
}

func articleStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var article model.RentalArticle
	require.NoError(t, db.First(&article, "id = ?", id).Error)
	return article.StockAvailable
}

func newOrderService(db *gorm.DB) OrderService {
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		nil,
	)
}

func newEventService(db *gorm.DB) EventService {
	return NewEventService(
		repository.NewEventRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		nil,
	)
}
