package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/shopkeeper/internal/client/api"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// Admin dispatches the admin subcommands. Access is gated locally on the
// confirmed role for UX only; the server enforces the real check and any
// 401/403 surfaces through the usual error path.
func (a *App) Admin(ctx context.Context, args []string) {

	if !a.isAdmin() {
		fmt.Fprintln(a.out, "Admin access required")
		return
	}

	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: admin stats|orders|users|products|setstatus|addproduct")
		return
	}

	switch args[0] {
	case "stats":
		a.adminStats(ctx)
	case "orders":
		a.adminOrders(ctx, args[1:])
	case "users":
		a.adminUsers(ctx, args[1:])
	case "products":
		a.adminProducts(ctx)
	case "setstatus":
		a.adminSetStatus(ctx, args[1:])
	case "addproduct":
		a.adminAddProduct(ctx)
	default:
		fmt.Fprintln(a.out, "Unknown admin command:", args[0])
	}
}

func (a *App) adminStats(ctx context.Context) {

	if err := a.admin.LoadStats(ctx); err != nil {
		a.printAuthError(err)
		return
	}

	stats, recent, popular := a.admin.Stats()
	if stats == nil {
		fmt.Fprintln(a.out, "No stats available")
		return
	}

	fmt.Fprintf(a.out, "Orders: %d, users: %d, products: %d, revenue: %s\n",
		stats.TotalOrders, stats.TotalUsers, stats.TotalProducts, fmtPrice(stats.Revenue))

	if len(recent) > 0 {
		fmt.Fprintln(a.out, "Recent orders:")
		for _, o := range recent {
			fmt.Fprintf(a.out, "  #%d [%s] %s — %s\n", o.ID, o.Status, o.CustomerName, fmtPrice(o.Total))
		}
	}
	if len(popular) > 0 {
		fmt.Fprintln(a.out, "Popular products:")
		for _, p := range popular {
			fmt.Fprintf(a.out, "  %s — %d sold\n", p.Name, p.Sold)
		}
	}
}

func (a *App) adminOrders(ctx context.Context, args []string) {

	p := api.ListParams{Page: 1}
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			p.Page = n
		} else {
			p.Status = args[0]
		}
	}

	if err := a.admin.LoadOrders(ctx, p); err != nil {
		a.printAuthError(err)
		return
	}

	orders, pg := a.admin.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders")
		return
	}

	for _, o := range orders {
		fmt.Fprintf(a.out, "#%d [%s] %s, %s — %s\n", o.ID, o.Status, o.CustomerName, o.CustomerPhone, fmtPrice(o.Total))
	}
	if pg != nil {
		fmt.Fprintf(a.out, "Page %d of %d (%d total)\n", pg.Page, pg.TotalPages, pg.Total)
	}
}

func (a *App) adminUsers(ctx context.Context, args []string) {

	p := api.ListParams{Page: 1}
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			p.Page = n
		} else {
			p.Search = args[0]
		}
	}

	if err := a.admin.LoadUsers(ctx, p); err != nil {
		a.printAuthError(err)
		return
	}

	users, pg := a.admin.Users()
	for _, u := range users {
		fmt.Fprintf(a.out, "#%d %s %s (@%s) [%s] bonus=%d\n",
			u.ID, u.FirstName, u.LastName, u.Username, u.Role, u.BonusBalance)
	}
	if pg != nil {
		fmt.Fprintf(a.out, "Page %d of %d (%d total)\n", pg.Page, pg.TotalPages, pg.Total)
	}
}

func (a *App) adminProducts(ctx context.Context) {

	if err := a.admin.LoadProducts(ctx); err != nil {
		a.printAuthError(err)
		return
	}

	for _, p := range a.admin.Products() {
		fmt.Fprintf(a.out, "#%d %s — %s, stock %d [%s]\n", p.ID, p.Name, fmtPrice(p.Price), p.Stock, p.Category)
	}
}

func (a *App) adminSetStatus(ctx context.Context, args []string) {

	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: admin setstatus <order-id> <new|confirmed|shipped|delivered|cancelled>")
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid order id:", args[0])
		return
	}

	status := models.OrderStatus(args[1])
	switch status {
	case models.OrderStatusNew, models.OrderStatusConfirmed, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		fmt.Fprintln(a.out, "Unknown status:", args[1])
		return
	}

	if err := a.admin.UpdateOrderStatus(ctx, id, status); err != nil {
		a.printAuthError(err)
		return
	}

	fmt.Fprintf(a.out, "Order #%d is now %s\n", id, status)
}

func (a *App) adminAddProduct(ctx context.Context) {

	name, err := GetSimpleText(a.reader, "Product name:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	priceStr, err := GetSimpleText(a.reader, "Price (rubles):", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil || price < 0 {
		fmt.Fprintln(a.out, "Invalid price:", priceStr)
		return
	}

	stockStr, err := GetSimpleText(a.reader, "Stock:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	stock, err := strconv.Atoi(stockStr)
	if err != nil || stock < 0 {
		fmt.Fprintln(a.out, "Invalid stock:", stockStr)
		return
	}

	category, err := GetSimpleText(a.reader, "Category:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	created, err := a.admin.CreateProduct(ctx, models.Product{
		Name:     name,
		Price:    price,
		Stock:    stock,
		Category: category,
	})
	if err != nil {
		a.printAuthError(err)
		return
	}

	fmt.Fprintf(a.out, "Created product #%d %s\n", created.ID, created.Name)
}
