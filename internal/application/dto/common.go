package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	Stock   *StockError  `json:"stock,omitempty"`
}

// FieldError campo rechazado por validación.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// StockError detalle de INSUFFICIENT_STOCK.
type StockError struct {
	StockItemID string `json:"stock_item_id"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
}
