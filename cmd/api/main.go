package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sales-platform/sales-service/internal/application"
	"github.com/sales-platform/sales-service/internal/domain"
	"github.com/sales-platform/sales-service/internal/infrastructure/eventbus"
	mongoRepo "github.com/sales-platform/sales-service/internal/infrastructure/mongodb"
	pgRepo "github.com/sales-platform/sales-service/internal/infrastructure/postgres"
	"github.com/sales-platform/sales-service/pkg/api"
	"github.com/sales-platform/sales-service/pkg/errors"
	"github.com/sales-platform/sales-service/pkg/logging"
	"github.com/sales-platform/sales-service/pkg/metrics"
	"github.com/sales-platform/sales-service/pkg/middleware"
	"github.com/sales-platform/sales-service/pkg/mongodb"
	"github.com/sales-platform/sales-service/pkg/postgres"
	"github.com/sales-platform/sales-service/pkg/resilience"
)

const serviceName = "sales-service"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting sales-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize PostgreSQL (relational store for sales)
	pgClient, err := postgres.NewClient(config.Postgres)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to PostgreSQL")
		os.Exit(1)
	}
	defer pgClient.Close()
	logger.Info("Connected to PostgreSQL", "database", config.Postgres.Database)

	if err := pgClient.AutoMigrate(&domain.Sale{}, &domain.SaleItem{}); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}
	logger.Info("Database migrations applied")

	// Initialize MongoDB (document store for the event log)
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize repositories
	saleRepo := pgRepo.NewSaleRepository(pgClient.DB(), logger, m)
	itemRepo := pgRepo.NewSaleItemRepository(pgClient.DB(), logger, m)
	eventLogRepo := mongoRepo.NewEventLogRepository(mongoClient.Database())

	// Initialize event publisher with a circuit breaker around the log store
	breakerConfig := resilience.DefaultCircuitBreakerConfig("event-log")
	breakerConfig.OnStateChange = func(name, _, to string) {
		state := 0
		switch to {
		case "open":
			state = 1
			m.RecordCircuitBreakerTrip(name)
		case "half-open":
			state = 2
		}
		m.SetCircuitBreakerState(name, state)
	}
	breaker := resilience.NewCircuitBreaker(breakerConfig, logger.Logger)
	publisher := eventbus.NewPublisher(eventLogRepo, breaker, logger, m)
	logger.Info("Event publisher initialized")

	// Initialize application services
	saleService := application.NewSaleApplicationService(saleRepo, itemRepo, publisher, logger, m)
	eventLogService := application.NewEventLogApplicationService(eventLogRepo, logger)

	// Setup Gin router with middleware
	router := gin.New()

	// Apply standard middleware (includes recovery, request ID, correlation, logging, error handling)
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	// Add metrics middleware
	router.Use(middleware.MetricsMiddleware(m))

	// Handle 404 and 405 errors
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		if err := pgClient.HealthCheck(ctx); err != nil {
			return err
		}
		return mongoClient.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", createSaleHandler(saleService, logger))
			sales.GET("", listSalesHandler(saleService, logger))
			sales.GET("/:saleId", getSaleHandler(saleService, logger))
			sales.PUT("/:saleId", updateSaleHandler(saleService, logger))
			sales.DELETE("/:saleId", deleteSaleHandler(saleService, logger))
			sales.PATCH("/:saleId/cancel", cancelSaleHandler(saleService, logger))

			sales.POST("/:saleId/items", addSaleItemHandler(saleService, logger))
			sales.GET("/:saleId/items", listSaleItemsHandler(saleService, logger))
			sales.GET("/:saleId/items/:itemId", getSaleItemHandler(saleService, logger))
			sales.PATCH("/:saleId/items/:itemId/cancel", cancelSaleItemHandler(saleService, logger))
		}

		v1.GET("/events", listEventLogsHandler(eventLogService, logger))
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	Postgres   *postgres.Config
	MongoDB    *mongodb.Config
}

func loadConfig() *Config {
	pgConfig := postgres.DefaultConfig()
	pgConfig.Host = getEnv("POSTGRES_HOST", "localhost")
	pgConfig.Port = getEnv("POSTGRES_PORT", "5432")
	pgConfig.User = getEnv("POSTGRES_USER", "postgres")
	pgConfig.Password = getEnv("POSTGRES_PASSWORD", "")
	pgConfig.Database = getEnv("POSTGRES_DATABASE", "sales")
	pgConfig.SSLMode = getEnv("POSTGRES_SSLMODE", "disable")

	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", "mongodb://localhost:27017")
	mongoConfig.Database = getEnv("MONGODB_DATABASE", "sales")

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		Postgres:   pgConfig,
		MongoDB:    mongoConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// CreateSaleRequest is the request body for registering a sale
type CreateSaleRequest struct {
	SaleNumber   string            `json:"saleNumber" binding:"required,sale_number"`
	Date         time.Time         `json:"date" binding:"required,not_future"`
	CustomerID   string            `json:"customerId" binding:"required,external_id"`
	CustomerName string            `json:"customerName" binding:"required"`
	BranchID     string            `json:"branchId" binding:"required,external_id"`
	BranchName   string            `json:"branchName" binding:"required"`
	Items        []SaleItemRequest `json:"items" binding:"omitempty,dive"`
}

// SaleItemRequest is the request body for a line item
type SaleItemRequest struct {
	ProductID   string  `json:"productId" binding:"required,external_id"`
	ProductName string  `json:"productName" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,min=1,max=20"`
	UnitPrice   float64 `json:"unitPrice" binding:"required,gt=0"`
}

// UpdateSaleRequest is the request body for updating a sale's descriptive data
type UpdateSaleRequest struct {
	SaleNumber   string    `json:"saleNumber" binding:"required,sale_number"`
	Date         time.Time `json:"date" binding:"required,not_future"`
	CustomerID   string    `json:"customerId" binding:"required,external_id"`
	CustomerName string    `json:"customerName" binding:"required"`
	BranchID     string    `json:"branchId" binding:"required,external_id"`
	BranchName   string    `json:"branchName" binding:"required"`
}

func createSaleHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req CreateSaleRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreateSaleCommand{
			SaleNumber:   req.SaleNumber,
			Date:         req.Date,
			CustomerID:   req.CustomerID,
			CustomerName: req.CustomerName,
			BranchID:     req.BranchID,
			BranchName:   req.BranchName,
			Items:        toItemInputs(req.Items),
		}

		sale, err := service.CreateSale(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, sale)
	}
}

func getSaleHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}

		withItems := c.DefaultQuery("withItems", "true") == "true"

		sale, err := service.GetSale(c.Request.Context(), saleID, withItems)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, sale)
	}
}

// saleSortColumns maps request sort fields to sale table columns.
var saleSortColumns = map[string]string{
	"date":        "date",
	"saleNumber":  "sale_number",
	"totalAmount": "total_amount",
	"createdAt":   "created_at",
}

func listSalesHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		page := api.ParsePagination(c)

		sort := api.ParseSort(c, "date")
		column, ok := saleSortColumns[sort.Field]
		if !ok {
			responder.RespondBadRequest("sortBy must be one of: date, saleNumber, totalAmount, createdAt")
			return
		}

		query := application.ListSalesQuery{
			Page:      page.Page,
			PageSize:  page.PageSize,
			SortBy:    column,
			SortDesc:  sort.Order == api.SortDesc,
			WithItems: c.Query("withItems") == "true",
		}

		for _, raw := range c.QueryArray("id") {
			id, err := uuid.Parse(raw)
			if err != nil {
				responder.RespondBadRequest("id must be a valid UUID")
				return
			}
			query.IDs = append(query.IDs, id)
		}
		if saleNumber := c.Query("saleNumber"); saleNumber != "" {
			query.SaleNumber = &saleNumber
		}
		if customerID := c.Query("customerId"); customerID != "" {
			query.CustomerID = &customerID
		}
		if customerName := c.Query("customerName"); customerName != "" {
			query.CustomerName = &customerName
		}
		if branchID := c.Query("branchId"); branchID != "" {
			query.BranchID = &branchID
		}
		if branchName := c.Query("branchName"); branchName != "" {
			query.BranchName = &branchName
		}
		if raw := c.Query("isCancelled"); raw != "" {
			cancelled, err := strconv.ParseBool(raw)
			if err != nil {
				responder.RespondBadRequest("isCancelled must be a boolean")
				return
			}
			query.IsCancelled = &cancelled
		}

		fromDate, ok := parseDateQuery(c, responder, "fromDate")
		if !ok {
			return
		}
		query.FromDate = fromDate

		toDate, ok := parseDateQuery(c, responder, "toDate")
		if !ok {
			return
		}
		query.ToDate = toDate

		sales, total, err := service.ListSales(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, api.NewPageResponse(sales, page.Page, page.PageSize, total))
	}
}

func updateSaleHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}

		var req UpdateSaleRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.UpdateSaleCommand{
			SaleID:       saleID,
			SaleNumber:   req.SaleNumber,
			Date:         req.Date,
			CustomerID:   req.CustomerID,
			CustomerName: req.CustomerName,
			BranchID:     req.BranchID,
			BranchName:   req.BranchName,
		}

		sale, err := service.UpdateSale(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, sale)
	}
}

func deleteSaleHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}

		if err := service.DeleteSale(c.Request.Context(), application.DeleteSaleCommand{SaleID: saleID}); err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
	}
}

func cancelSaleHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}

		sale, err := service.CancelSale(c.Request.Context(), application.CancelSaleCommand{SaleID: saleID})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, sale)
	}
}

func addSaleItemHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}

		var req SaleItemRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.AddSaleItemCommand{
			SaleID:      saleID,
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		}

		item, err := service.AddSaleItem(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

func listSaleItemsHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}

		items, err := service.GetSaleItems(c.Request.Context(), saleID)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

func getSaleItemHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}
		itemID, ok := parseUUIDParam(c, responder, "itemId")
		if !ok {
			return
		}

		item, err := service.GetSaleItem(c.Request.Context(), saleID, itemID)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func cancelSaleItemHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		saleID, ok := parseUUIDParam(c, responder, "saleId")
		if !ok {
			return
		}
		itemID, ok := parseUUIDParam(c, responder, "itemId")
		if !ok {
			return
		}

		cmd := application.CancelSaleItemCommand{SaleID: saleID, ItemID: itemID}
		sale, err := service.CancelSaleItem(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, sale)
	}
}

func listEventLogsHandler(service *application.EventLogApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		page := api.ParsePagination(c)

		sort := api.ParseSort(c, "createdAt")
		if sort.Field != "createdAt" {
			responder.RespondBadRequest("sortBy must be createdAt")
			return
		}

		query := application.ListEventLogsQuery{
			Page:     page.Page,
			PageSize: page.PageSize,
			SortDesc: sort.Order == api.SortDesc,
		}

		if eventID := c.Query("eventId"); eventID != "" {
			query.EventID = &eventID
		}
		if eventType := c.Query("eventType"); eventType != "" {
			query.EventType = &eventType
		}

		fromDate, ok := parseDateQuery(c, responder, "fromDate")
		if !ok {
			return
		}
		query.FromDate = fromDate

		toDate, ok := parseDateQuery(c, responder, "toDate")
		if !ok {
			return
		}
		query.ToDate = toDate

		logs, total, err := service.ListEventLogs(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, api.NewPageResponse(logs, page.Page, page.PageSize, total))
	}
}

func respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func parseUUIDParam(c *gin.Context, responder *middleware.ErrorResponder, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		responder.RespondBadRequest(name + " must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseDateQuery(c *gin.Context, responder *middleware.ErrorResponder, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		responder.RespondBadRequest(name + " must be an RFC 3339 timestamp")
		return nil, false
	}
	return &t, true
}

func toItemInputs(items []SaleItemRequest) []application.SaleItemInput {
	inputs := make([]application.SaleItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, application.SaleItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}
