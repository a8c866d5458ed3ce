package db_models

// All lists every table managed by AutoMigrate.
func All() []any {
	return []any{
		&Trip{},
		&TripDay{},
		&TripActivity{},
		&Todo{},
		&TodoTemplate{},
		&Place{},
	}
}
