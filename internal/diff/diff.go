// Package diff compares two product snapshots by product code.
package diff

import "github.com/Houeta/catalog-watcher/internal/models"

// index maps product codes to products, keeping first-seen key order.
// A repeated code keeps its first position and takes the later value.
type index struct {
	codes    []string
	products map[string]models.Product
}

func newIndex(products []models.Product) index {
	idx := index{
		codes:    make([]string, 0, len(products)),
		products: make(map[string]models.Product, len(products)),
	}
	for _, p := range products {
		if _, found := idx.products[p.ProductCode]; !found {
			idx.codes = append(idx.codes, p.ProductCode)
		}
		idx.products[p.ProductCode] = p
	}
	return idx
}

// Products compares two product lists and finds the difference.
// Prices are compared numerically; the reported prices are the display strings.
// Neither input is modified.
func Products(oldProducts, newProducts []models.Product) models.Changes {
	oldIdx := newIndex(oldProducts)
	newIdx := newIndex(newProducts)

	var changes models.Changes
	for _, code := range newIdx.codes {
		newProduct := newIdx.products[code]
		oldProduct, found := oldIdx.products[code]

		switch {
		case !found:
			changes.Added = append(changes.Added, newProduct)
		case oldProduct.PriceNumeric != newProduct.PriceNumeric:
			changes.PriceChanged = append(changes.PriceChanged, models.PriceChange{
				Product:  newProduct,
				OldPrice: oldProduct.Price,
				NewPrice: newProduct.Price,
			})
		}
	}

	for _, code := range oldIdx.codes {
		if _, found := newIdx.products[code]; !found {
			changes.Removed = append(changes.Removed, oldIdx.products[code])
		}
	}

	return changes
}
