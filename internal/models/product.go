package models

// Product is one catalogue entry observed on the watched page.
type Product struct {
	ProductCode  string `json:"productCode"` // ProductCode is the business key, unique within a snapshot.
	Name         string `json:"name"`
	Color        string `json:"color"`
	Price        string `json:"price"`        // Price is the display string as shown on the site.
	PriceNumeric int    `json:"priceNumeric"` // PriceNumeric is the digits of Price, 0 when there are none.
	URL          string `json:"url"`
	ImageURL     string `json:"imageUrl"`
}
