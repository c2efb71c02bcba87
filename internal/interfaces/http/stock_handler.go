package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/rs/zerolog"
)

// StockHandler maneja los items de bodega y la conciliación (protegido).
type StockHandler struct {
	catalog   *inventory.StockCatalogUseCase
	reconcile *inventory.ReconcileUseCase
	log       zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(catalog *inventory.StockCatalogUseCase, reconcile *inventory.ReconcileUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{catalog: catalog, reconcile: reconcile, log: log}
}

// List godoc
// @Summary      Listar items de bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query     string  false  "Filtrar por bodega"
// @Success      200           {array}   dto.StockItemResponse
// @Router       /api/stock-items [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	items, err := h.catalog.List(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.StockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toStockItemResponse(it))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener item de bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del item"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-items/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	it, err := h.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockItemResponse(it))
}

// Upsert godoc
// @Summary      Crear o actualizar item de bodega
// @Description  remaining_quantity y added_quantity solo se fijan al crear; después el stock lo mueven las facturas.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "ID del item"
// @Param        body  body      dto.StockItemRequest  true  "Datos del item"
// @Success      200   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock-items/{id} [put]
func (h *StockHandler) Upsert(c *fiber.Ctx) error {
	var in dto.StockItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateRequest(in); err != nil {
		return writeError(c, h.log, err)
	}
	it, err := h.catalog.Upsert(c.UserContext(), inventory.StockItemInput{
		ID:               c.Params("id"),
		Name:             in.Name,
		Code:             in.Code,
		Color:            in.Color,
		WarehouseID:      in.WarehouseID,
		UnitPrice:        in.UnitPrice,
		AddedQuantity:    in.AddedQuantity,
		CartonsCount:     in.CartonsCount,
		BottlesPerCarton: in.BottlesPerCarton,
		SingleBottles:    in.SingleBottles,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockItemResponse(it))
}

// Reconciliation godoc
// @Summary      Conciliar stock contra facturas
// @Description  Compara remaining_quantity con added_quantity más el efecto de todas las facturas. Solo lectura.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query     string  false  "Filtrar por bodega"
// @Success      200           {object}  dto.ReconciliationResponse
// @Router       /api/stock-items/reconciliation [get]
func (h *StockHandler) Reconciliation(c *fiber.Ctx) error {
	report, err := h.reconcile.Reconcile(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReconciliationResponse(report))
}
