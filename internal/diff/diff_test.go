package diff_test

import (
	"testing"

	"github.com/Houeta/catalog-watcher/internal/diff"
	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(code, price string, numeric int) models.Product {
	return models.Product{
		ProductCode:  code,
		Name:         "テストバッグ " + code,
		Color:        "ブラック",
		Price:        price,
		PriceNumeric: numeric,
		URL:          "https://example.com/product/" + code,
		ImageURL:     "https://example.com/img/" + code + ".jpg",
	}
}

func codes(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ProductCode)
	}
	return out
}

func TestProducts(t *testing.T) {
	h001 := product("H001", "¥100,000", 100000)
	h002 := product("H002", "¥200,000", 200000)
	h003 := product("H003", "¥300,000", 300000)

	testCases := []struct {
		name             string
		oldProducts      []models.Product
		newProducts      []models.Product
		expectedAdded    []string
		expectedRemoved  []string
		expectedChanged  []models.PriceChange
		expectHasChanges bool
	}{
		{
			name:             "identical lists",
			oldProducts:      []models.Product{h001, h002},
			newProducts:      []models.Product{h001, h002},
			expectedAdded:    []string{},
			expectedRemoved:  []string{},
			expectHasChanges: false,
		},
		{
			name:             "added and price changed",
			oldProducts:      []models.Product{h001},
			newProducts:      []models.Product{product("H001", "¥120,000", 120000), h002},
			expectedAdded:    []string{"H002"},
			expectedRemoved:  []string{},
			expectedChanged: []models.PriceChange{
				{Product: product("H001", "¥120,000", 120000), OldPrice: "¥100,000", NewPrice: "¥120,000"},
			},
			expectHasChanges: true,
		},
		{
			name:             "removed",
			oldProducts:      []models.Product{h001, h002},
			newProducts:      []models.Product{h001},
			expectedAdded:    []string{},
			expectedRemoved:  []string{"H002"},
			expectHasChanges: true,
		},
		{
			name:             "first run",
			oldProducts:      nil,
			newProducts:      []models.Product{h002, h001, h003},
			expectedAdded:    []string{"H002", "H001", "H003"},
			expectedRemoved:  []string{},
			expectHasChanges: true,
		},
		{
			name:             "empty new list",
			oldProducts:      []models.Product{h001},
			newProducts:      []models.Product{},
			expectedAdded:    []string{},
			expectedRemoved:  []string{"H001"},
			expectHasChanges: true,
		},
		{
			name:             "disjoint keys",
			oldProducts:      []models.Product{h001, h002},
			newProducts:      []models.Product{h003},
			expectedAdded:    []string{"H003"},
			expectedRemoved:  []string{"H001", "H002"},
			expectHasChanges: true,
		},
		{
			name:             "display format change with equal numeric price",
			oldProducts:      []models.Product{product("H001", "¥100,000", 100000)},
			newProducts:      []models.Product{product("H001", "￥100,000 (税込)", 100000)},
			expectedAdded:    []string{},
			expectedRemoved:  []string{},
			expectHasChanges: false,
		},
		{
			name:            "multiple types simultaneously",
			oldProducts:     []models.Product{h001, h002},
			newProducts:     []models.Product{product("H001", "¥110,000", 110000), h003},
			expectedAdded:   []string{"H003"},
			expectedRemoved: []string{"H002"},
			expectedChanged: []models.PriceChange{
				{Product: product("H001", "¥110,000", 110000), OldPrice: "¥100,000", NewPrice: "¥110,000"},
			},
			expectHasChanges: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			changes := diff.Products(tc.oldProducts, tc.newProducts)

			assert.Equal(t, tc.expectedAdded, codes(changes.Added))
			assert.Equal(t, tc.expectedRemoved, codes(changes.Removed))
			assert.Equal(t, tc.expectedChanged, changes.PriceChanged)
			assert.Equal(t, tc.expectHasChanges, changes.HasChanges())
		})
	}
}

func TestProducts_FirstRunReturnsNewListInOrder(t *testing.T) {
	newProducts := []models.Product{
		product("B", "¥1", 1),
		product("A", "¥2", 2),
		product("C", "¥3", 3),
	}

	changes := diff.Products([]models.Product{}, newProducts)

	assert.Equal(t, newProducts, changes.Added)
	assert.Empty(t, changes.Removed)
	assert.Empty(t, changes.PriceChanged)
}

func TestProducts_DuplicateCodesLastWins(t *testing.T) {
	first := product("H001", "¥100", 100)
	second := product("H001", "¥150", 150)

	changes := diff.Products(nil, []models.Product{first, product("H002", "¥1", 1), second})

	require.Len(t, changes.Added, 2)
	assert.Equal(t, second, changes.Added[0], "first position, last value")
	assert.Equal(t, "H002", changes.Added[1].ProductCode)

	changes = diff.Products([]models.Product{first}, []models.Product{first, second})
	require.Len(t, changes.PriceChanged, 1)
	assert.Equal(t, "¥150", changes.PriceChanged[0].NewPrice)
}

func TestProducts_DoesNotMutateInputs(t *testing.T) {
	oldProducts := []models.Product{product("H001", "¥1", 1), product("H002", "¥2", 2)}
	newProducts := []models.Product{product("H002", "¥3", 3), product("H003", "¥4", 4)}

	oldCopy := append([]models.Product(nil), oldProducts...)
	newCopy := append([]models.Product(nil), newProducts...)

	_ = diff.Products(oldProducts, newProducts)

	assert.Equal(t, oldCopy, oldProducts)
	assert.Equal(t, newCopy, newProducts)
}
