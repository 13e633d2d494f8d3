package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
	"github.com/ngochuy-hya/uteshop-storefront/internal/auth"
	"github.com/ngochuy-hya/uteshop-storefront/internal/cart"
	"github.com/ngochuy-hya/uteshop-storefront/internal/checkout"
	"github.com/ngochuy-hya/uteshop-storefront/internal/config"
	"github.com/ngochuy-hya/uteshop-storefront/internal/coupon"
	"github.com/ngochuy-hya/uteshop-storefront/internal/order"
	"github.com/ngochuy-hya/uteshop-storefront/internal/payment"
	"github.com/ngochuy-hya/uteshop-storefront/internal/product"
	"github.com/ngochuy-hya/uteshop-storefront/internal/wishlist"
)

// app bundles the wired services for the subcommands.
type app struct {
	auth     *auth.Service
	products *product.Service
	cart     *cart.Store
	wishlist *wishlist.Store
	coupons  *coupon.Applier
	orders   *order.Service
	checkout *checkout.Service
}

// main wires dependencies and dispatches the subcommand.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	session := api.NewSession(cfg.SessionFile())
	client := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout, session)

	authSvc := auth.NewService(client)
	cartStore := cart.NewStore(cart.NewService(client))
	applier := coupon.NewApplier(coupon.NewService(client))
	orderSvc := order.NewService(client)
	paymentSvc := payment.NewService(client)

	a := &app{
		auth:     authSvc,
		products: product.NewService(client),
		cart:     cartStore,
		wishlist: wishlist.NewStore(wishlist.NewService(client), cfg.WishlistCacheFile()),
		coupons:  applier,
		orders:   orderSvc,
		checkout: checkout.NewService(cartStore, applier, orderSvc, paymentSvc),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(os.Args) < 2 {
		usage()
	}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		_ = fs.Parse(args)
		u, err := a.auth.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s %s <%s>\n", u.FirstName, u.LastName, u.Email)
		return nil

	case "logout":
		a.auth.Logout(ctx)
		fmt.Println("logged out")
		return nil

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		q := fs.String("q", "", "search query")
		_ = fs.Parse(args)
		var (
			list []product.Product
			err  error
		)
		if *q != "" {
			list, err = a.products.Search(ctx, *q)
		} else {
			list, err = a.products.List(ctx)
		}
		if err != nil {
			return err
		}
		for _, p := range list {
			fmt.Printf("%5d  %-30s %10s VND  stock %d\n", p.ID, p.Title, p.Price.StringFixed(0), p.Stock)
		}
		return nil

	case "cart":
		if err := a.cart.Refresh(ctx); err != nil {
			return err
		}
		for _, it := range a.cart.Items() {
			fmt.Printf("%5d  %-30s x%-3d %12s VND\n", it.ID, it.Title, it.Quantity, it.LineTotal.StringFixed(0))
		}
		fmt.Printf("subtotal: %s VND\n", a.cart.Subtotal().StringFixed(0))
		return nil

	case "cart-add":
		fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
		id := fs.Int("product", 0, "product id")
		qty := fs.Int("qty", 1, "quantity")
		_ = fs.Parse(args)
		if err := a.cart.AddProduct(ctx, *id, *qty); err != nil {
			return err
		}
		fmt.Printf("cart now has %d items\n", a.cart.Count())
		return nil

	case "wishlist":
		if err := a.wishlist.Refresh(ctx); err != nil {
			return err
		}
		for _, it := range a.wishlist.Items() {
			fmt.Printf("%5d  %-30s %10s VND\n", it.ProductID, it.Title, it.Price.StringFixed(0))
		}
		return nil

	case "wishlist-toggle":
		fs := flag.NewFlagSet("wishlist-toggle", flag.ExitOnError)
		id := fs.Int("product", 0, "product id")
		_ = fs.Parse(args)
		if err := a.wishlist.Refresh(ctx); err != nil {
			return err
		}
		in, err := a.wishlist.Toggle(ctx, *id)
		if err != nil {
			return err
		}
		if in {
			fmt.Printf("product %d saved\n", *id)
		} else {
			fmt.Printf("product %d removed\n", *id)
		}
		return nil

	case "orders":
		list, err := a.orders.List(ctx, 1)
		if err != nil {
			return err
		}
		for _, o := range list {
			fmt.Printf("%5d  %-12s %-10s %12s VND  %s\n", o.ID, o.Code, o.Status, o.Total.StringFixed(0), o.CreatedAt.Format(time.RFC3339))
		}
		return nil

	case "checkout":
		fs := flag.NewFlagSet("checkout", flag.ExitOnError)
		addressID := fs.Int("address", 0, "shipping address id")
		method := fs.String("method", payment.MethodCOD, "payment method (cod or payos)")
		code := fs.String("coupon", "", "coupon code")
		_ = fs.Parse(args)

		if err := a.cart.Refresh(ctx); err != nil {
			return err
		}
		if *code != "" {
			if _, err := a.coupons.Apply(ctx, *code, a.cart.Subtotal()); err != nil {
				return err
			}
		}
		sum := a.checkout.Preview()
		fmt.Printf("subtotal %s  discount %s  shipping %s  tax %s  total %s\n",
			sum.Subtotal.StringFixed(0), sum.Discount.StringFixed(0),
			sum.Shipping.StringFixed(0), sum.Tax.StringFixed(0), sum.Total.StringFixed(0))

		res, err := a.checkout.PlaceOrder(ctx, *addressID, *method, "")
		if err != nil {
			return err
		}
		fmt.Printf("order %s placed, total %s VND\n", res.Order.Code, res.Order.Total.StringFixed(0))
		if res.Payment != nil {
			if res.Payment.RenderMode() == payment.RenderHostedImage {
				fmt.Printf("scan the QR at %s\n", res.Payment.QRCode)
			} else {
				fmt.Printf("QR payload: %s\n", res.Payment.QRCode)
			}
		}
		return nil

	default:
		usage()
		return nil
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: storefront <command> [flags]

commands:
  login -email X -password Y   sign in and store the session
  logout                       drop the session
  products [-q query]          list or search the catalog
  cart                         show the cart
  cart-add -product N [-qty N] add a product to the cart
  wishlist                     show the wishlist
  wishlist-toggle -product N   save or unsave a product
  orders                       list order history
  checkout -address N [-method cod|payos] [-coupon CODE]`)
	os.Exit(2)
}
