package model

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Shop{},
		&Product{},
		&ProductImage{},
		&Order{},
		&OrderItem{},
		&PaymentSlip{},
		&Notification{},
	}
}
