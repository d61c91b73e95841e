package domain

type PaymentType string

const (
	PaymentTypeCash PaymentType = "cash"
	PaymentTypeCard PaymentType = "card"
	PaymentTypeUPI  PaymentType = "upi"
)

var paymentTypes = []PaymentType{PaymentTypeCash, PaymentTypeCard, PaymentTypeUPI}

// PaymentTypes lists the accepted payment types in display order.
func PaymentTypes() []PaymentType {
	return append([]PaymentType(nil), paymentTypes...)
}

func (p PaymentType) IsValid() bool {
	for _, known := range paymentTypes {
		if p == known {
			return true
		}
	}
	return false
}
