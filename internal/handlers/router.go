package handlers

import (
	"net/http"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer needs. Idempotency may be nil, in
// which case payments ignore the Idempotency-Key header.
type Services struct {
	Orders       services.OrderService
	Sales        services.SaleService
	Tables       services.TableService
	Reservations services.ReservationService
	Stock        services.StockService
	CRM          services.CRMService
	CashRegister services.CashRegisterService
	Reports      services.ReportService
	Users        services.UserService
	Idempotency  IdempotencyStore
}

func NewRouter(svc Services, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	orders := NewOrderHandler(svc.Orders, svc.Idempotency, log)
	sales := NewSaleHandler(svc.Sales, log)
	tables := NewTableHandler(svc.Tables, log)
	reservations := NewReservationHandler(svc.Reservations, log)
	products := NewProductHandler(svc.Stock, log)
	customers := NewCustomerHandler(svc.CRM, log)
	cash := NewCashRegisterHandler(svc.CashRegister, log)
	reports := NewReportHandler(svc.Reports, log)
	users := NewUserHandler(svc.Users, log)

	managers := RequireRoles(svc.Users, models.Admin, models.Manager)
	admins := RequireRoles(svc.Users, models.Admin)

	api := router.Group("/api", Identity(svc.Users))
	{
		api.GET("/me", users.Me)

		api.POST("/orders", orders.Create)
		api.GET("/orders/kitchen", orders.ListKitchen)
		api.GET("/orders/held", orders.ListHeld)
		api.GET("/orders/pos/active", orders.GetActivePOS)
		api.GET("/orders/table/:tableId/open", orders.GetOpenByTable)
		api.PATCH("/orders/items/:itemId/status", orders.UpdateItemStatus)
		api.GET("/orders/:id", orders.Get)
		api.GET("/orders/:id/sales", sales.ListByOrder)
		api.POST("/orders/:id/items", orders.AddItem)
		api.PUT("/orders/:id/items/:itemId", orders.SetItemQuantity)
		api.DELETE("/orders/:id/items/:itemId", orders.RemoveItem)
		api.POST("/orders/:id/pay", orders.Pay)
		api.PATCH("/orders/:id/close", orders.Close)
		api.PATCH("/orders/:id/cancel", orders.Cancel)
		api.PATCH("/orders/:id/hold", orders.Hold)
		api.PATCH("/orders/:id/resume", orders.Resume)
		api.POST("/orders/:id/transfer", orders.Transfer)
		api.POST("/orders/:id/merge", orders.Merge)

		api.POST("/sales", sales.Checkout)
		api.GET("/sales", sales.List)
		api.GET("/sales/:id", sales.Get)

		api.GET("/tables", tables.List)
		api.POST("/tables", managers, tables.Create)
		api.PUT("/tables/layout", managers, tables.UpdateLayout)
		api.PATCH("/tables/:id/status", tables.SetStatus)

		api.GET("/walls", tables.ListWalls)
		api.POST("/walls", managers, tables.CreateWall)
		api.PUT("/walls/layout", managers, tables.UpdateWallLayout)
		api.PUT("/walls/:id", managers, tables.UpdateWall)
		api.DELETE("/walls/:id", managers, tables.DeleteWall)

		api.GET("/reservations", reservations.List)
		api.POST("/reservations", reservations.Create)
		api.DELETE("/reservations/:id", reservations.Delete)

		api.GET("/products", products.List)
		api.POST("/products", managers, products.Create)
		api.GET("/products/low-stock", products.LowStock)
		api.GET("/products/:id/movements", products.Movements)
		api.POST("/products/:id/stock", managers, products.AddStock)

		api.GET("/categories", products.ListCategories)
		api.POST("/categories", managers, products.CreateCategory)
		api.DELETE("/categories/:id", managers, products.DeleteCategory)

		api.GET("/customers", customers.List)
		api.POST("/customers", customers.Create)
		api.GET("/customers/:id", customers.Get)
		api.GET("/customers/:id/sales", sales.ListByCustomer)

		api.POST("/cash-register/open", cash.Open)
		api.POST("/cash-register/close", managers, cash.Close)
		api.POST("/cash-register/transactions", cash.AddTransaction)
		api.GET("/cash-register/current", cash.Current)

		api.GET("/reports/sales-summary", managers, reports.SalesSummary)
		api.GET("/reports/top-products", managers, reports.TopProducts)
		api.GET("/reports/payment-methods", managers, reports.PaymentMethods)

		api.GET("/users", admins, users.List)
		api.POST("/users", admins, users.Create)
	}

	return router
}
