package model

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Author{},
		&Category{},
		&Publisher{},
		&Book{},
		&Loan{},
		&Reservation{},
		&Review{},
		&LibrarySettings{},
		&ConnectionLog{},
	}
}
