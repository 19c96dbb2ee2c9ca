package catalog

import "context"

var defaultProducts = []Product{
	{ID: "1", Name: "Chocolate Cake", Description: "Rich chocolate layers with creamy frosting", Category: "cakes", Price: 250, Image: "../src/assets/product-cake.jpg", IsPopular: true},
	{ID: "2", Name: "Assorted Cupcakes", Description: "6 piece variety pack with different flavors", Category: "cupcakes", Price: 120, Image: "../src/assets/product-cupcakes.jpg", IsPopular: true},
	{ID: "3", Name: "French Pastries", Description: "Buttery, flaky pastries fresh from the oven", Category: "pastries", Price: 45, Image: "../src/assets/product-pastries.jpg"},
	{ID: "4", Name: "Artisan Bread", Description: "Freshly baked sourdough with crispy crust", Category: "bread", Price: 35, Image: "../src/assets/product-bread.jpg"},
	{ID: "5", Name: "Vanilla Cake", Description: "Classic vanilla sponge with buttercream", Category: "cakes", Price: 220, Image: "../src/assets/product-cake.jpg"},
	{ID: "6", Name: "Blueberry Muffins", Description: "Moist muffins packed with fresh blueberries", Category: "muffins", Price: 60, Image: "../src/assets/product-cupcakes.jpg", IsPopular: true},
	{ID: "7", Name: "Croissants", Description: "Light and buttery French croissants", Category: "pastries", Price: 25, Image: "../src/assets/product-pastries.jpg"},
	{ID: "8", Name: "Whole Wheat Bread", Description: "Healthy whole wheat loaf", Category: "bread", Price: 30, Image: "../src/assets/product-bread.jpg"},
}

// Seed inserts the default catalog when the store is empty.
func Seed(ctx context.Context, store Store) error {
	n, err := store.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	for i := range defaultProducts {
		p := defaultProducts[i]
		if err := store.Insert(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
