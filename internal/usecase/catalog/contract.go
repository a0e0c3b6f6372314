package catalog

// PriceSource supplies prices for books the collaborator did not price.
type PriceSource interface {
	Price() int
}
