package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/client/checkout"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

func fmtPrice(p int64) string {
	return fmt.Sprintf("%d ₽", p)
}

func (a *App) listProducts(ctx context.Context, args []string) {

	filter := models.ProductFilter{}
	if len(args) > 0 {
		filter.Search = strings.Join(args, " ")
	}

	products, err := a.api.Products(ctx, filter)
	if err != nil {
		a.printAuthError(err)
		return
	}

	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products found")
		return
	}

	for _, p := range products {
		stock := "in stock"
		if !p.InStock() {
			stock = "out of stock"
		}
		fmt.Fprintf(a.out, "#%d %s — %s (%s)\n", p.ID, p.Name, fmtPrice(p.Price), stock)
	}
}

func (a *App) addToCart(ctx context.Context, args []string) {

	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: add <product-id> [quantity]")
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid product id:", args[0])
		return
	}

	quantity := 1
	if len(args) > 1 {
		quantity, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(a.out, "Invalid quantity:", args[1])
			return
		}
	}

	product, err := a.api.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Fprintln(a.out, "Product not found")
			return
		}
		a.printAuthError(err)
		return
	}

	if !product.InStock() {
		fmt.Fprintln(a.out, "Sorry, this product is out of stock")
		return
	}

	a.cart.AddItem(ctx, *product, quantity)
	fmt.Fprintf(a.out, "Added %s to cart (items: %d, total: %s)\n",
		product.Name, a.cart.TotalItems(), fmtPrice(a.cart.TotalPrice()))
}

func (a *App) showCart() {

	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return
	}

	for _, it := range items {
		fmt.Fprintf(a.out, "#%d %s x%d — %s\n", it.ID, it.Name, it.Quantity, fmtPrice(it.Subtotal()))
	}
	fmt.Fprintf(a.out, "Total: %s (%d items)\n", fmtPrice(a.cart.TotalPrice()), a.cart.TotalItems())
}

func (a *App) removeFromCart(ctx context.Context, args []string) {

	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: remove <product-id>")
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid product id:", args[0])
		return
	}

	a.cart.RemoveItem(ctx, id)
	fmt.Fprintln(a.out, "Removed")
}

func (a *App) updateQuantity(ctx context.Context, args []string) {

	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: qty <product-id> <quantity>")
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid product id:", args[0])
		return
	}

	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(a.out, "Invalid quantity:", args[1])
		return
	}

	a.cart.UpdateQuantity(ctx, id, quantity)
	fmt.Fprintf(a.out, "Total: %s (%d items)\n", fmtPrice(a.cart.TotalPrice()), a.cart.TotalItems())
}

// Checkout collects the customer form and places the order. The cart is
// cleared only when the server accepts the order, so a failed attempt can be
// retried without re-adding anything.
func (a *App) Checkout(ctx context.Context) {

	if a.cart.TotalItems() == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return
	}

	name, err := GetSimpleText(a.reader, "Enter your name:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	phone, err := GetSimpleText(a.reader, "Enter phone:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	email, err := GetSimpleText(a.reader, "Enter email (optional):", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	address, err := GetSimpleText(a.reader, "Enter delivery address:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	info := checkout.CustomerInfo{Name: name, Phone: phone, Email: email, Address: address}

	order, err := a.checkout.PlaceOrder(ctx, info)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, "Error:", err)
			return
		}
		a.printAuthError(err)
		return
	}

	fmt.Fprintf(a.out, "Order #%d placed, total %s. Thank you!\n", order.ID, fmtPrice(order.Total))
}

func (a *App) listOrders(ctx context.Context) {

	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}

	orders, err := a.api.MyOrders(ctx)
	if err != nil {
		a.printAuthError(err)
		return
	}

	if len(orders) == 0 {
		fmt.Fprintln(a.out, "You have no orders yet")
		return
	}

	for _, o := range orders {
		fmt.Fprintf(a.out, "Order #%d [%s] %s — %s\n", o.ID, o.Status, o.CreatedAt, fmtPrice(o.Total))
		for _, line := range o.Items {
			fmt.Fprintf(a.out, "  %s x%d — %s\n", line.ProductName, line.Quantity, fmtPrice(line.Price*int64(line.Quantity)))
		}
	}
}

func (a *App) showProfile(ctx context.Context) {

	user := a.session.CurrentUser()
	if user == nil {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}

	fmt.Fprintf(a.out, "%s %s (@%s)\n", user.FirstName, user.LastName, user.Username)
	fmt.Fprintf(a.out, "Bonus balance: %d\n", user.BonusBalance)
	if user.ReferralCode != "" {
		fmt.Fprintf(a.out, "Referral code: %s\n", user.ReferralCode)
	}

	// loyalty reads are best effort, a profile without them is still useful
	if stats, err := a.api.ReferralStats(ctx); err == nil && stats != nil {
		fmt.Fprintf(a.out, "Referrals: %d (%d completed)\n", stats.TotalReferrals, stats.CompletedReferrals)
	}

	history, err := a.api.BonusHistory(ctx)
	if err != nil {
		return
	}
	if len(history) > 0 {
		fmt.Fprintln(a.out, "Recent bonus transactions:")
		for _, t := range history {
			fmt.Fprintf(a.out, "  %+d %s (%s)\n", t.Amount, t.Description, t.CreatedAt)
		}
	}
}
