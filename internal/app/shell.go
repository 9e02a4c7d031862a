package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/mikawa/storefront/internal/actionlog"
	"github.com/mikawa/storefront/internal/cart"
	"github.com/mikawa/storefront/internal/catalog"
	"github.com/mikawa/storefront/internal/gateway"
	"github.com/mikawa/storefront/internal/nav"
	"github.com/mikawa/storefront/internal/session"
	"github.com/mikawa/storefront/internal/view"
)

// console prints alerts and checkout notifications to the terminal. It is
// the shell's stand-in for the browser alert box.
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

func (c *console) Alert(message string) {
	c.printf("! %s\n", message)
}

func (c *console) OrderPlaced(resp gateway.OrderResponse) {
	c.printf("! Order placed: %s (%s)\n", resp.OrderNumber, resp.Status)
}

func (c *console) MemberStatusUpdated(status gateway.MemberStatus) {
	c.printf("! Member status: %d points, %s\n", status.Points, status.Rank)
}

func (c *console) MemberStatusFailed(error) {
	c.printf("! Order placed, but the member status could not be refreshed.\n")
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Shell is the interactive storefront frontend: one command per line,
// dispatched against the views.
type Shell struct {
	out     io.Writer
	in      io.Reader
	actions *actionlog.Logger
	store   *session.Store
	router  *nav.Router
	cart    *cart.Orchestrator
	auth    *view.AuthViews
	home    *view.HomeView
	history *view.HistoryView
}

// Run reads commands until EOF, "quit", or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, `Storefront shell. Type "help" for commands.`)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		s.prompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := s.dispatch(ctx, line); quit {
				return nil
			}
		}
	}
}

func (s *Shell) prompt() {
	route, _ := s.router.Current().Get()
	name, _ := s.store.UserName().Get()
	if name == "" {
		name = "guest"
	}
	fmt.Fprintf(s.out, "%s %s> ", name, route)
}

// dispatch runs one command. It is the last line of defense: a panic in
// any view is logged and echoed, never propagated.
func (s *Shell) dispatch(ctx context.Context, line string) (quit bool) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.Errorf("panic: %v", rec)
			s.actions.Error(err, "global-error-handler", nil)
			fmt.Fprintf(s.out, "unexpected error: %v\n", rec)
		}
	}()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		s.printHelp()
	case "quit", "exit":
		return true

	case "login":
		if !expectArgs(s.out, args, 2, "login <email> <password>") {
			return false
		}
		_ = s.auth.Login(ctx, view.LoginForm{Email: args[0], Password: args[1]})
	case "register":
		if !expectArgs(s.out, args, 3, "register <username> <email> <password>") {
			return false
		}
		_ = s.auth.Register(ctx, view.RegisterForm{Username: args[0], Email: args[1], Password: args[2]})
	case "forgot":
		if !expectArgs(s.out, args, 1, "forgot <email>") {
			return false
		}
		_ = s.auth.ForgotPassword(ctx, view.ForgotPasswordForm{Email: args[0]})
	case "reset":
		if !expectArgs(s.out, args, 2, "reset <new-password> <confirm>") {
			return false
		}
		_ = s.auth.ResetPassword(ctx, view.ResetPasswordForm{NewPassword: args[0], ConfirmPassword: args[1]})
	case "logout":
		if err := s.store.SignOut(ctx); err != nil {
			fmt.Fprintf(s.out, "logout failed: %v\n", err)
			return false
		}
		s.router.Navigate(ctx, nav.RouteLogin)

	case "goto":
		if !expectArgs(s.out, args, 1, "goto <route>") {
			return false
		}
		s.navigate(ctx, args[0])

	case "products":
		if !s.navigate(ctx, nav.RouteHome) {
			return false
		}
		s.printProducts()
	case "filter":
		if !expectArgs(s.out, args, 1, "filter <category>") {
			return false
		}
		if !s.navigate(ctx, nav.RouteHome) {
			return false
		}
		s.home.ToggleCategory(args[0])
		s.printProducts()
	case "sort":
		if !expectArgs(s.out, args, 1, "sort <default|priceAsc|priceDesc|ratingDesc>") {
			return false
		}
		if !s.navigate(ctx, nav.RouteHome) {
			return false
		}
		s.home.Sort(catalog.SortOption(args[0]))
		s.printProducts()
	case "add":
		if !expectArgs(s.out, args, 1, "add <product-id>") {
			return false
		}
		if !s.navigate(ctx, nav.RouteHome) {
			return false
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(s.out, "product id must be a number")
			return false
		}
		line, err := s.home.AddToCart(id)
		if err != nil {
			fmt.Fprintf(s.out, "add failed: %v\n", err)
			return false
		}
		fmt.Fprintf(s.out, "added %s (%s)\n", line.ProductName, line.Price.StringFixed(2))

	case "cart":
		s.printCart()
	case "togglecart":
		open := s.cart.ToggleVisibility()
		fmt.Fprintf(s.out, "cart panel open: %v\n", open)
	case "togglemembership":
		open := s.cart.ToggleMembershipMenu()
		fmt.Fprintf(s.out, "membership menu open: %v\n", open)
		if open {
			if status, ok := s.cart.MemberStatus().Get(); ok {
				fmt.Fprintf(s.out, "member status: %d points, %s\n", status.Points, status.Rank)
			}
		}
	case "remove":
		if !expectArgs(s.out, args, 1, "remove <index>") {
			return false
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(s.out, "index must be a number")
			return false
		}
		s.cart.RemoveAt(i)
		s.printCart()
	case "order":
		if _, err := s.cart.PlaceOrder(ctx); err != nil {
			fmt.Fprintf(s.out, "order failed: %v\n", err)
		}

	case "history":
		if !s.navigate(ctx, nav.RouteOrderHistory) {
			return false
		}
		s.history.Load(ctx)
		s.printHistory()
	case "next":
		if !s.navigate(ctx, nav.RouteOrderHistory) {
			return false
		}
		s.history.NextPage(ctx)
		s.printHistory()
	case "prev":
		if !s.navigate(ctx, nav.RouteOrderHistory) {
			return false
		}
		s.history.PrevPage(ctx)
		s.printHistory()

	case "whoami":
		id := s.store.Identity()
		if !id.Present() {
			fmt.Fprintln(s.out, "not signed in")
			return false
		}
		fmt.Fprintf(s.out, "%s (%s)\n", id.UserName, id.UserID)

	default:
		fmt.Fprintf(s.out, "unknown command %q, try \"help\"\n", cmd)
	}
	return false
}

// navigate moves to route and reports whether we actually landed there.
// A guard redirect prints a hint instead.
func (s *Shell) navigate(ctx context.Context, route string) bool {
	landed := s.router.Navigate(ctx, route)
	if landed != route {
		fmt.Fprintln(s.out, "please log in first")
		return false
	}
	return true
}

func (s *Shell) printProducts() {
	for _, p := range s.home.Products() {
		badge := ""
		if p.New {
			badge = " NEW"
		}
		if p.OnSale {
			badge += " SALE"
		}
		fmt.Fprintf(s.out, "%3d  %-28s %-14s %8s  %d★%s\n",
			p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Rating, badge)
	}
	fmt.Fprintf(s.out, "categories: %s\n", strings.Join(s.home.Categories(), ", "))
}

func (s *Shell) printCart() {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return
	}
	for i, l := range lines {
		fmt.Fprintf(s.out, "%3d  %-28s %8s\n", i, l.ProductName, l.Price.StringFixed(2))
	}
	fmt.Fprintf(s.out, "total: %s (%d items)\n",
		s.cart.TotalPrice().StringFixed(2), s.cart.TotalQuantity())
	if status, ok := s.cart.MemberStatus().Get(); ok {
		fmt.Fprintf(s.out, "member status: %d points, %s\n", status.Points, status.Rank)
	}
}

func (s *Shell) printHistory() {
	if msg := s.history.Err(); msg != "" {
		fmt.Fprintln(s.out, msg)
		return
	}
	orders := s.history.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "no orders")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(s.out, "%s  %-14s %8s  %d items\n",
			o.OrderDate.Format("2006-01-02 15:04"), o.OrderNumber,
			o.TotalPrice.StringFixed(2), o.TotalQuantity)
	}
	fmt.Fprintf(s.out, "page %d of %d\n", s.history.Page()+1, s.history.TotalPages())
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `commands:
  login <email> <password>        sign in
  register <user> <email> <pass>  create an account
  forgot <email>                  request a password reset link
  reset <new> <confirm>           set a new password
  logout                          sign out
  goto <route>                    navigate (e.g. /home, /order-history)
  products                        list the catalog
  filter <category>               toggle a category filter
  sort <option>                   default|priceAsc|priceDesc|ratingDesc
  add <product-id>                add a product to the cart
  cart                            show the cart
  remove <index>                  remove a cart line
  togglecart                      open or close the cart panel
  togglemembership                open or close the membership menu
  order                           place the order
  history | next | prev           browse past orders
  whoami                          show the signed-in user
  quit                            exit
`)
}

func expectArgs(out io.Writer, args []string, n int, usage string) bool {
	if len(args) != n {
		fmt.Fprintf(out, "usage: %s\n", usage)
		return false
	}
	return true
}
