// @title           Maid Cafe Backend API
// @version         1.0.0
// @description     Management backend for a themed cafe event: maids, menu stock, seating, orders and instax captures with archival history.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey CafeSecret
// @in header
// @name X-Cafe-Secret

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "maid-cafe-backend/docs"
	"maid-cafe-backend/internal/config"
	"maid-cafe-backend/internal/database"
	"maid-cafe-backend/internal/handlers"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/middleware"
	"maid-cafe-backend/internal/supabase"
	"maid-cafe-backend/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ids, err := identifier.FromName(cfg.IDStrategy)
	if err != nil {
		logrus.Fatalf("failed to resolve identifier strategy: %v", err)
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	migrator.Close()
	logrus.Info("migrations completed")

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket, cfg.PublicBaseURL)
	if err != nil {
		logrus.Fatalf("failed to initialize storage client: %v", err)
	}

	validator := validation.NewValidator(dbClient)

	maidsHandler := handlers.NewMaidsHandler(dbClient, storageClient, ids, cfg.MaidListDefault)
	menusHandler := handlers.NewMenusHandler(dbClient, storageClient, ids)
	usersHandler := handlers.NewUsersHandler(dbClient, validator, ids)
	ordersHandler := handlers.NewOrdersHandler(dbClient, dbClient, dbClient, ids)
	instaxHandler := handlers.NewInstaxHandler(dbClient, dbClient, storageClient, validator, ids)

	router := gin.Default()

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	// Public surface.
	api.GET("/maids", maidsHandler.ListMaids)
	api.GET("/maids/:maid_id", maidsHandler.GetMaid)
	api.GET("/menus", menusHandler.ListMenus)
	api.GET("/menus/:menu_id", menusHandler.GetMenu)
	api.POST("/users", usersHandler.CreateUser)
	api.GET("/users/:user_id", usersHandler.GetUser)
	api.PATCH("/users/:user_id", usersHandler.UpdateUser)
	api.POST("/orders", ordersHandler.CreateOrder)
	api.PATCH("/orders/:order_id", ordersHandler.UpdateOrder)
	api.GET("/orders/:order_id", ordersHandler.GetOrder)
	api.GET("/users/:user_id/orders", ordersHandler.ListOrdersByUser)
	api.POST("/instax", instaxHandler.CreateInstax)
	api.POST("/seats/:seat_id/instax", instaxHandler.CreateInstaxBySeat)
	api.PATCH("/instax/:instax_id", instaxHandler.UpdateInstax)
	api.GET("/users/:user_id/instax", instaxHandler.GetLatestInstaxByUser)

	// Staff endpoints.
	staff := api.Group("")
	staff.Use(middleware.RequireSecret(cfg.StaffSecret))
	staff.POST("/maids", maidsHandler.CreateMaid)
	staff.PATCH("/maids/:maid_id", maidsHandler.UpdateMaid)
	staff.POST("/maids/:maid_id/active", maidsHandler.ToggleActive)
	staff.DELETE("/maids/:maid_id", maidsHandler.DeleteMaid)
	staff.GET("/maids/:maid_id/users", maidsHandler.ListAssignedUsers)
	staff.POST("/menus", menusHandler.CreateMenu)
	staff.PATCH("/menus/:menu_id", menusHandler.UpdateMenu)
	staff.DELETE("/menus/:menu_id", menusHandler.DeleteMenu)
	staff.GET("/users", usersHandler.ListUsers)
	staff.GET("/seats/:seat_id/user", usersHandler.GetUserBySeat)
	staff.GET("/orders", ordersHandler.ListOrders)
	staff.GET("/instax/:instax_id", instaxHandler.GetInstax)

	// Admin tier: instax archive management.
	admin := api.Group("")
	admin.Use(middleware.RequireSecret(cfg.AdminSecret))
	admin.GET("/users/:user_id/instax/history", instaxHandler.ListHistoryByUser)
	admin.DELETE("/instax-history/:history_id", instaxHandler.DeleteHistory)

	logrus.Infof("server starting on port %s (id strategy: %s)", cfg.Port, ids.Name())
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logrus.Fatalf("failed to start server: %v", err)
	}
}
