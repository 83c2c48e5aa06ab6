package models

// Address is the delivery address assembled during the checkout address step.
type Address struct {
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number" binding:"required"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
}

const (
	PaymentCard   = "card"
	PaymentBoleto = "boleto"
)

type CardDetails struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type Payment struct {
	Method string       `json:"method"`
	Card   *CardDetails `json:"card,omitempty"`
}
