package workouts

import _ "embed"

var (
	//go:embed sql/schema.sql
	SchemaSQL string

	//go:embed sql/seed.sql
	SeedSQL string
)
