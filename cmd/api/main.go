package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"backend/internal/auth"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// @title           Bakery Management API
// @version         1.0
// @description     Order, event and permission management for a bakery backend.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	secret := middleware.GetJWTSecret()

	// Permission cache: TTL in seconds via PERMISSIONS_CACHE_TTL, default 120.
	cacheTTL := auth.DefaultCacheTTL
	if raw := os.Getenv("PERMISSIONS_CACHE_TTL"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cacheTTL = time.Duration(secs) * time.Second
		}
	}
	permCache := auth.NewCache(cacheTTL)
	permCache.StartSweeper()
	defer permCache.Stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewEventRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	permService := service.NewPermissionService(permRepo, auditRepo, txManager, permCache)
	groupService := service.NewGroupService(groupRepo, permRepo, auditRepo, txManager, permCache)
	userService := service.NewUserService(userRepo, permService, permCache, secret)
	customerService := service.NewCustomerService(customerRepo)
	catalogService := service.NewCatalogService(catalogRepo)
	orderService := service.NewOrderService(orderRepo, customerRepo, catalogRepo, auditRepo, txManager, wsHub)
	eventService := service.NewEventService(eventRepo, customerRepo, catalogRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)

	// Seed the permission catalog and the bootstrap admin before serving.
	if err := seed(context.Background(), permService, permRepo, groupRepo, userRepo); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	permHandler := handler.NewPermissionHandler(permService)
	groupHandler := handler.NewGroupHandler(groupService)
	customerHandler := handler.NewCustomerHandler(customerService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	orderHandler := handler.NewOrderHandler(orderService)
	eventHandler := handler.NewEventHandler(eventService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	// Register API Routes
	authn := middleware.RequireAuth(secret)
	gate := middleware.NewPermissionGate(permService, permCache)

	api := router.Group("")
	userHandler.RegisterRoutes(api, authn, gate)
	permHandler.RegisterRoutes(api, authn, gate)
	groupHandler.RegisterRoutes(api, authn, gate)
	customerHandler.RegisterRoutes(api, authn, gate)
	catalogHandler.RegisterRoutes(api, authn, gate)
	orderHandler.RegisterRoutes(api, authn, gate)
	eventHandler.RegisterRoutes(api, authn, gate)
	auditHandler.RegisterRoutes(api, authn, gate)

	port := envOr("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// seed upserts the permission catalog, an Administrators group holding every
// permission, and a bootstrap admin user (ADMIN_EMAIL/ADMIN_PASSWORD env,
// skipped when unset). Everything is idempotent across restarts.
func seed(
	ctx context.Context,
	permService service.PermissionService,
	permRepo repository.PermissionRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
) error {
	if err := permService.SeedDefaultPermissions(ctx); err != nil {
		return err
	}

	adminGroup, err := groupRepo.FindByName(ctx, "Administrators")
	if errors.Is(err, gorm.ErrRecordNotFound) {
		adminGroup = &model.Group{Name: "Administrators", Description: "Full access to every module"}
		if err := groupRepo.Create(ctx, adminGroup); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, slug := range auth.AllPermissionSlugs() {
		perm, err := permRepo.FindBySlug(ctx, slug)
		if err != nil {
			return err
		}
		linked, err := groupRepo.HasPermission(ctx, adminGroup.ID, perm.ID)
		if err != nil {
			return err
		}
		if !linked {
			link := model.GroupPermission{GroupID: adminGroup.ID, PermissionID: perm.ID}
			if err := groupRepo.AddPermission(ctx, &link); err != nil {
				return err
			}
		}
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	admin, err := userRepo.GetByEmail(ctx, adminEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin = &model.User{
			Username: envOr("ADMIN_USERNAME", "admin"),
			Email:    adminEmail,
			Password: string(hashed),
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			return err
		}
		log.Printf("Bootstrap admin %s created", adminEmail)
	} else if err != nil {
		return err
	}

	isMember, err := groupRepo.HasMember(ctx, adminGroup.ID, admin.ID.String())
	if err != nil {
		return err
	}
	if !isMember {
		member := model.UserGroup{UserID: admin.ID, GroupID: adminGroup.ID}
		if err := groupRepo.AddMember(ctx, &member); err != nil {
			return err
		}
	}

	return nil
}
