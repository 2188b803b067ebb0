package models

import "time"

// PriceChange - a product present in both snapshots whose numeric price differs.
type PriceChange struct {
	Product  Product `json:"product"` // Product is the new version.
	OldPrice string  `json:"oldPrice"`
	NewPrice string  `json:"newPrice"`
}

// Changes - comparison result: all types of changes.
type Changes struct {
	Added        []Product
	Removed      []Product
	PriceChanged []PriceChange
}

// HasChanges reports whether any of the three collections is non-empty.
func (c *Changes) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || len(c.PriceChanged) > 0
}

// State - the complete snapshot persisted between runs.
type State struct {
	LastChecked time.Time `json:"lastChecked"`
	Products    []Product `json:"products"`
	TotalChecks int       `json:"totalChecks"`
}

// NextState builds the snapshot that follows previous. previous may be nil on the first run.
func NextState(products []Product, previous *State, now time.Time) *State {
	total := 1
	if previous != nil {
		total = previous.TotalChecks + 1
	}

	return &State{
		LastChecked: now.UTC(),
		Products:    products,
		TotalChecks: total,
	}
}
