// Package transport provides DTOs for the product catalog domain.
package transport

// ProductDetail is the slice of an upstream catalog product this service uses.
type ProductDetail struct {
	ID   int64
	Name string
}
