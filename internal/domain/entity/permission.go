package entity

// Action operación sujeta a autorización.
type Action string

// Acciones de la API.
const (
	ActionInvoiceRead           Action = "invoice.read"
	ActionInvoiceCreateSale     Action = "invoice.create.sale"
	ActionInvoiceCreatePurchase Action = "invoice.create.purchase"
	ActionInvoiceCreateDispatch Action = "invoice.create.dispatch"
	ActionInvoiceUpdate         Action = "invoice.update"
	ActionInvoiceDelete         Action = "invoice.delete"
	ActionInvoiceReturn         Action = "invoice.return"
	ActionStockRead             Action = "stock.read"
	ActionStockWrite            Action = "stock.write"
	ActionStockReconcile        Action = "stock.reconcile"
)

// permissionMatrix rol × acción → permitido. Lo que no aparece está denegado.
var permissionMatrix = map[string]map[Action]bool{
	RoleAdmin: {
		ActionInvoiceRead:           true,
		ActionInvoiceCreateSale:     true,
		ActionInvoiceCreatePurchase: true,
		ActionInvoiceCreateDispatch: true,
		ActionInvoiceUpdate:         true,
		ActionInvoiceDelete:         true,
		ActionInvoiceReturn:         true,
		ActionStockRead:             true,
		ActionStockWrite:            true,
		ActionStockReconcile:        true,
	},
	RoleBodeguero: {
		ActionInvoiceRead:           true,
		ActionInvoiceCreatePurchase: true,
		ActionInvoiceCreateDispatch: true,
		ActionInvoiceUpdate:         true,
		ActionInvoiceReturn:         true,
		ActionStockRead:             true,
		ActionStockWrite:            true,
		ActionStockReconcile:        true,
	},
	RoleVendedor: {
		ActionInvoiceRead:       true,
		ActionInvoiceCreateSale: true,
		ActionStockRead:         true,
	},
}

// Can indica si el rol puede ejecutar la acción.
func Can(role string, action Action) bool {
	return permissionMatrix[role][action]
}

// CanUpdate indica si el rol puede editar una factura del tipo dado: además de
// ActionInvoiceUpdate necesita poder crear ese tipo.
func CanUpdate(role string, t InvoiceType) bool {
	action := CreateActionFor(t)
	return action != "" && Can(role, ActionInvoiceUpdate) && Can(role, action)
}

// CreateActionFor acción de creación según el tipo de factura. FACTORY_RETURN solo se crea
// a partir de un despacho (ActionInvoiceReturn).
func CreateActionFor(t InvoiceType) Action {
	switch t {
	case InvoiceTypeSale:
		return ActionInvoiceCreateSale
	case InvoiceTypePurchase:
		return ActionInvoiceCreatePurchase
	case InvoiceTypeFactoryDispatch:
		return ActionInvoiceCreateDispatch
	case InvoiceTypeFactoryReturn:
		return ActionInvoiceReturn
	}
	return ""
}
