package embedding

import "github.com/pgvector/pgvector-go"

// ToVector adapts raw embedding values to the pgvector column type.
func ToVector(values []float32) pgvector.Vector {
	return pgvector.NewVector(values)
}
