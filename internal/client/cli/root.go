package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.session.CurrentUser(); u != nil {
		s = u.FirstName
		if u.IsAdmin() {
			s += " admin"
		}
	}
	if exp := a.session.TokenExpiresAt(); !exp.IsZero() && exp.Before(time.Now()) {
		s += " token-expired"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

func (a *App) notifySessionExpired() {
	fmt.Fprintln(a.out, "Session expired, please log in again")
}

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to the shopkeeper console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "shop %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()
		case "login":
			a.Login(ctx)
		case "tglogin":
			a.TelegramLogin(ctx)
		case "register":
			a.Register(ctx)
		case "logout":
			a.session.Logout(ctx)
			fmt.Fprintln(a.out, "Logged out")
		case "products":
			a.listProducts(ctx, args)
		case "add":
			a.addToCart(ctx, args)
		case "cart":
			a.showCart()
		case "remove":
			a.removeFromCart(ctx, args)
		case "qty":
			a.updateQuantity(ctx, args)
		case "clear":
			a.cart.Clear(ctx)
			fmt.Fprintln(a.out, "Cart cleared")
		case "checkout":
			a.Checkout(ctx)
		case "orders":
			a.listOrders(ctx)
		case "profile":
			a.showProfile(ctx)
		case "admin":
			a.Admin(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Catalog: products [search], add <id> [qty], cart, remove <id>, qty <id> <n>, clear, checkout")
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Account: orders, profile, logout, exit")
	} else {
		fmt.Fprintln(a.out, "Account: login, tglogin, register, exit")
	}
	if a.isAdmin() {
		fmt.Fprintln(a.out, "Admin: admin stats|orders|users|products|setstatus|addproduct")
	}
}
