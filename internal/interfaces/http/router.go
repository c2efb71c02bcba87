package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/billing"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lifecycle      *billing.InvoiceLifecycleManager
	FactoryReturns *billing.FactoryReturnProcessor
	Catalog        *inventory.StockCatalogUseCase
	Reconcile      *inventory.ReconcileUseCase
	Metrics        HTTPObserver // opcional
	Log            zerolog.Logger
	JWTSecret      string
	JWTIssuer      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	if deps.Metrics != nil {
		api.Use(MetricsMiddleware(deps.Metrics))
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Invoices; la creación valida el permiso según el tipo dentro del handler.
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Lifecycle, deps.FactoryReturns, deps.Log)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", RequirePermission(entity.ActionInvoiceRead), invoiceHandler.List)
	invoices.Get("/:id", RequirePermission(entity.ActionInvoiceRead), invoiceHandler.GetByID)
	invoices.Put("/:id", RequirePermission(entity.ActionInvoiceUpdate), invoiceHandler.Update)
	invoices.Delete("/:id", RequirePermission(entity.ActionInvoiceDelete), invoiceHandler.Delete)
	invoices.Post("/:id/return", RequirePermission(entity.ActionInvoiceReturn), invoiceHandler.Return)

	// Stock items; /reconciliation antes de /:id
	items := protected.Group("/stock-items")
	stockHandler := NewStockHandler(deps.Catalog, deps.Reconcile, deps.Log)
	items.Get("/", RequirePermission(entity.ActionStockRead), stockHandler.List)
	items.Get("/reconciliation", RequirePermission(entity.ActionStockReconcile), stockHandler.Reconciliation)
	items.Get("/:id", RequirePermission(entity.ActionStockRead), stockHandler.GetByID)
	items.Put("/:id", RequirePermission(entity.ActionStockWrite), stockHandler.Upsert)
}
