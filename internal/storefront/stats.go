package storefront

import "context"

// CategoryCount is one bar of the products-per-category chart.
type CategoryCount struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// Earnings returns gross earnings to date.
func (c *Client) Earnings(ctx context.Context) (float64, error) {
	var resp struct {
		Earnings float64 `json:"earnings"`
	}
	if err := c.get(ctx, "/stats/earnings", &resp); err != nil {
		return 0, err
	}
	return resp.Earnings, nil
}

// TotalUsers returns the registered account count.
func (c *Client) TotalUsers(ctx context.Context) (int, error) {
	var resp struct {
		TotalUser int `json:"total_user"`
	}
	if err := c.get(ctx, "/stats/user_total", &resp); err != nil {
		return 0, err
	}
	return resp.TotalUser, nil
}

// TotalOrders returns the order count.
func (c *Client) TotalOrders(ctx context.Context) (int, error) {
	var resp struct {
		TotalCommande int `json:"total_commande"`
	}
	if err := c.get(ctx, "/stats/commande_total", &resp); err != nil {
		return 0, err
	}
	return resp.TotalCommande, nil
}

// AverageSpending returns the mean basket value.
func (c *Client) AverageSpending(ctx context.Context) (float64, error) {
	var resp struct {
		AverageSpending float64 `json:"average_spending"`
	}
	if err := c.get(ctx, "/stats/average_spending", &resp); err != nil {
		return 0, err
	}
	return resp.AverageSpending, nil
}

// TotalProductsSold returns the lifetime units sold.
func (c *Client) TotalProductsSold(ctx context.Context) (int, error) {
	var resp struct {
		TotalProductSold int `json:"total_product_sold"`
	}
	if err := c.get(ctx, "/stats/total_product_sold", &resp); err != nil {
		return 0, err
	}
	return resp.TotalProductSold, nil
}

// TotalCategories returns the catalog category count.
func (c *Client) TotalCategories(ctx context.Context) (int, error) {
	var resp struct {
		TotalCategories int `json:"total_categories"`
	}
	if err := c.get(ctx, "/stats/total_categories", &resp); err != nil {
		return 0, err
	}
	return resp.TotalCategories, nil
}

// TotalProductStock returns units currently in stock across the catalog.
func (c *Client) TotalProductStock(ctx context.Context) (int, error) {
	var resp struct {
		TotalProductStock int `json:"total_product_stock"`
	}
	if err := c.get(ctx, "/stats/total_product_stock", &resp); err != nil {
		return 0, err
	}
	return resp.TotalProductStock, nil
}

// AverageProductCost returns the mean catalog price.
func (c *Client) AverageProductCost(ctx context.Context) (float64, error) {
	var resp struct {
		AverageProductCost float64 `json:"average_product_cost"`
	}
	if err := c.get(ctx, "/stats/average_product_cost", &resp); err != nil {
		return 0, err
	}
	return resp.AverageProductCost, nil
}

// ProductsPerCategory returns the per-category product counts.
func (c *Client) ProductsPerCategory(ctx context.Context) ([]CategoryCount, error) {
	var resp struct {
		ProductsPerCategory []CategoryCount `json:"products_per_category"`
	}
	if err := c.get(ctx, "/stats/products_per_category", &resp); err != nil {
		return nil, err
	}
	return resp.ProductsPerCategory, nil
}
