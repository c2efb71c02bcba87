package entity

// Roles válidos para Actor.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// Actor identidad de quien ejecuta la operación. Lo entrega el subsistema de autenticación
// y se pasa explícitamente a cada caso de uso.
type Actor struct {
	ID       string
	Username string
	Role     string
}
