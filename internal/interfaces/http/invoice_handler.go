package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/billing"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// InvoiceHandler maneja las peticiones HTTP de facturas (protegido).
type InvoiceHandler struct {
	lifecycle *billing.InvoiceLifecycleManager
	returns   *billing.FactoryReturnProcessor
	log       zerolog.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(lifecycle *billing.InvoiceLifecycleManager, returns *billing.FactoryReturnProcessor, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{lifecycle: lifecycle, returns: returns, log: log}
}

// Create godoc
// @Summary      Crear factura
// @Description  Asigna número, aplica el efecto sobre el stock y persiste la factura en un solo lote.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.InvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateRequest(in); err != nil {
		return writeError(c, h.log, err)
	}
	action := entity.CreateActionFor(entity.InvoiceType(in.Type))
	if !entity.Can(GetRole(c), action) {
		return forbidden(c, action)
	}
	inv, err := h.lifecycle.Create(c.UserContext(), GetActor(c), draftFromRequest(in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(inv))
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        type    query     string  false  "SALE | PURCHASE | FACTORY_DISPATCH | FACTORY_RETURN"
// @Param        limit   query     int     false  "Límite"  default(20)
// @Param        offset  query     int     false  "Offset"  default(0)
// @Success      200     {object}  dto.InvoiceListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	if err := validateRequest(q); err != nil {
		return writeError(c, h.log, err)
	}
	q.DefaultPage()
	list, err := h.lifecycle.List(c.UserContext(), repository.InvoiceFilter{
		Type:   entity.InvoiceType(q.Type),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Count: len(list)},
	}
	for _, inv := range list {
		out.Items = append(out.Items, toInvoiceResponse(inv))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura por ID
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.lifecycle.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// Update godoc
// @Summary      Actualizar factura
// @Description  Reemplaza líneas y datos. El tipo no cambia; version protege contra escrituras concurrentes.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID de la factura"
// @Param        body  body      dto.InvoiceRequest  true  "Factura"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateRequest(in); err != nil {
		return writeError(c, h.log, err)
	}
	if !entity.CanUpdate(GetRole(c), entity.InvoiceType(in.Type)) {
		return forbidden(c, entity.ActionInvoiceUpdate)
	}
	inv, err := h.lifecycle.Update(c.UserContext(), GetActor(c), c.Params("id"), draftFromRequest(in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// Delete godoc
// @Summary      Eliminar factura
// @Description  Revierte el efecto sobre el stock y elimina el documento.
// @Tags         invoices
// @Security     Bearer
// @Param        id   path  string  true  "ID de la factura"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.lifecycle.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Return godoc
// @Summary      Devolver despacho a fábrica
// @Description  Genera un FACTORY_RETURN que suma al stock las cantidades del despacho.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true   "ID del despacho"
// @Param        body  body      dto.FactoryReturnRequest  false  "Datos de la devolución"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/return [post]
func (h *InvoiceHandler) Return(c *fiber.Ctx) error {
	var in dto.FactoryReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	if err := validateRequest(in); err != nil {
		return writeError(c, h.log, err)
	}
	ret, err := h.returns.ProcessReturn(c.UserContext(), GetActor(c), c.Params("id"), in.ReturnType, in.Notes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(ret))
}
