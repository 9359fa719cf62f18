package models

// Ref is a weak reference to another record. Value is nil when the referenced
// record no longer exists; callers treat that as a valid state, not an error.
type Ref[T any] struct {
	ID    string `json:"id"`
	Value *T     `json:"value"`
}

func (r Ref[T]) Resolved() bool {
	return r.Value != nil
}

// Resolve builds a Ref from an id and a lookup of loaded records.
func Resolve[T any](id string, loaded map[string]*T) Ref[T] {
	return Ref[T]{ID: id, Value: loaded[id]}
}

type OwnerSummary struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FloorSummary struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type ShopSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	FloorID string `json:"floor_id"`
}

type OfferSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Discount float64 `json:"discount"`
	Active   bool    `json:"active"`
}
