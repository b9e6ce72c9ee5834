package entity

import "github.com/shopspring/decimal"

// Actor identifica a quien ejecuta una operación sobre el libro.
// La identidad la resuelve la puerta de acceso externa (token JWT);
// el dominio solo la registra en los metadatos de auditoría.
type Actor struct {
	ID   string
	Name string
}

// Capabilities son los permisos que la puerta de acceso adjunta al actor.
// La capa HTTP los verifica antes de invocar el caso de uso; los
// invariantes monetarios se validan igual aunque el permiso exista.
type Capabilities struct {
	MaxDiscountPercent decimal.Decimal // tope de descuento porcentual que puede otorgar
	CanVoid            bool            // puede anular líneas y transacciones
	CanCancel          bool            // puede anular facturas completas
}
