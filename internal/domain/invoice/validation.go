package invoice

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// phonePattern teléfono del cliente: dígitos con prefijo + opcional.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

// NormalizePhone quita espacios, guiones y paréntesis.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// Validate revisa los campos de parte según el tipo y las líneas del borrador.
func Validate(d *Draft) error {
	if d == nil {
		return domain.Invalid("draft", "borrador vacío")
	}
	if !d.Type.Valid() {
		return domain.Invalid("type", "tipo de factura desconocido")
	}
	switch d.Type {
	case entity.InvoiceTypeSale:
		if strings.TrimSpace(d.ClientName) == "" {
			return domain.Invalid("client_name", "requerido")
		}
		if !phonePattern.MatchString(NormalizePhone(d.ClientPhone)) {
			return domain.Invalid("client_phone", "formato inválido")
		}
	case entity.InvoiceTypePurchase:
		if strings.TrimSpace(d.SupplierName) == "" {
			return domain.Invalid("supplier_name", "requerido")
		}
	case entity.InvoiceTypeFactoryDispatch, entity.InvoiceTypeFactoryReturn:
		if strings.TrimSpace(d.Recipient) == "" {
			return domain.Invalid("recipient", "requerido")
		}
	}
	if len(d.lines) == 0 {
		return domain.Invalid("lines", "la factura no tiene líneas")
	}
	for i, l := range d.lines {
		field := fmt.Sprintf("lines[%d]", i)
		if strings.TrimSpace(l.StockItemID) == "" {
			return domain.Invalid(field+".stock_item_id", "requerido")
		}
		if l.Quantity <= 0 {
			return domain.Invalid(field+".quantity", "debe ser mayor que cero")
		}
		if d.Type.Priced() && !l.UnitPrice.IsPositive() {
			return domain.Invalid(field+".unit_price", "debe ser mayor que cero")
		}
	}
	return nil
}
