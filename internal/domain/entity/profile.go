package entity

// Profile usuario responsable de movimientos (solo lectura para el ledger).
type Profile struct {
	ID    string
	Name  string
	Email string
}
