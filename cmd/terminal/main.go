package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"barpos/internal/api"
	"barpos/internal/config"
	"barpos/internal/guard"
	"barpos/internal/model"
	"barpos/internal/replenish"
	"barpos/internal/session"
	"barpos/internal/stock"
	"barpos/internal/store"
	"barpos/internal/workboard"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	st, err := store.Open(cfg.StateDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local state db")
	}
	defer st.Close()

	sess := session.New(st)
	if err := sess.Restore(); err != nil {
		log.Warn().Err(err).Msg("could not restore previous session")
	}

	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout(), sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful teardown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("shutting down…")
		cancel()
	}()

	term := &terminal{
		cfg:     cfg,
		sess:    sess,
		client:  client,
		board:   workboard.New(client, sess.Snapshot().Role),
		stock:   stock.New(client),
		replen:  replenish.New(client),
		breaker: api.NewCircuitBreaker(api.DefaultBreakerConfig()),
	}
	term.run(ctx)
	log.Info().Msg("terminal exited")
}

type terminal struct {
	cfg     *config.Config
	sess    *session.Session
	client  *api.Client
	board   *workboard.Board
	stock   *stock.Dashboard
	replen  *replenish.Workflow
	breaker *api.CircuitBreaker
	poller  *workboard.Poller
}

func (t *terminal) run(ctx context.Context) {
	fmt.Println("bar POS terminal — type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	lines := make(chan string)
	go func() {
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			t.stopPoller()
			return
		case line, ok := <-lines:
			if !ok {
				t.stopPoller()
				return
			}
			if quit := t.dispatch(ctx, strings.Fields(line)); quit {
				t.stopPoller()
				return
			}
		}
	}
}

func (t *terminal) dispatch(ctx context.Context, args []string) (quit bool) {
	if len(args) == 0 {
		return false
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		printHelp()
	case "quit", "exit":
		return true
	case "login":
		t.login(ctx, rest)
	case "logout":
		t.stopPoller()
		t.sess.Logout()
	case "board":
		t.showBoard(ctx)
	case "prepare":
		t.prepare(ctx, rest)
	case "pay":
		t.pay(ctx, rest)
	case "stock":
		t.showStock(ctx, rest)
	case "adjust":
		t.adjust(ctx, rest)
	case "replenish":
		t.showReplenishment(ctx, rest)
	case "request":
		t.createRequest(ctx, rest)
	case "cancel":
		t.cancelRequest(ctx, rest)
	default:
		fmt.Printf("unknown command %q — type 'help'\n", cmd)
	}
	return false
}

func printHelp() {
	fmt.Print(`commands:
  login <phone> <password>          authenticate against the backend
  logout                            clear the session
  board                             order workboard (starts 5s refresh)
  prepare <order-id>                advance an open order to servie
  pay <order-id> <cash|mobile_money> [amount]   close an order
  stock [search <q> | cat <name> | oos | page <n>]   stock dashboard
  adjust <product-id> <delta>       change stock quantity
  replenish [status <s> | search <q> | page <n>]     replenishment view
  request <product-id> <qty> [priority] [comment…]   new stock request
  cancel <request-id>               cancel a pending request
  quit
`)
}

// gate enforces the barman route guard the way the web client does before
// entering any /barman view.
func (t *terminal) gate() bool {
	state := t.sess.Snapshot()
	if ok, redirect := guard.RequireBarman(state); !ok {
		fmt.Printf("access denied — go to %s\n", redirect)
		return false
	}
	return true
}

func (t *terminal) login(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: login <phone> <password>")
		return
	}
	if err := t.sess.Login(ctx, t.client, args[0], args[1]); err != nil {
		fmt.Println("login failed:", err)
		return
	}
	state := t.sess.Snapshot()
	// Role is fixed for the lifetime of the session; rebuild the board with it.
	t.stopPoller()
	t.board = workboard.New(t.client, state.Role)
	fmt.Printf("welcome %s (%s)\n", state.User.Name, state.Role)
}

func (t *terminal) showBoard(ctx context.Context) {
	if !t.gate() {
		return
	}
	if !t.board.Loaded() {
		if err := t.board.LoadInitialData(ctx); err != nil {
			fmt.Println("warning: could not load orders:", err)
			return
		}
		t.poller = workboard.NewPoller(t.board, t.breaker, t.cfg.PollInterval())
		if err := t.poller.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("could not start workboard poller")
		}
	}
	snap := t.board.Snapshot()
	fmt.Printf("daily revenue %s | closed %d | cash %s | mobile %s | pending %d\n",
		snap.Metrics.TotalRevenue, snap.Metrics.TotalClosedOrders,
		snap.Metrics.CashPayments, snap.Metrics.MobileMoneyPayments, snap.Pending)
	fmt.Println("open:")
	printOrders(snap.Open)
	fmt.Println("preparing:")
	printOrders(snap.Preparing)
}

func printOrders(orders []model.Order) {
	if len(orders) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, o := range orders {
		fmt.Printf("  %s  %d covers  %s  %s\n", o.ID, o.NumberOfCustomers, o.TotalAmount, o.Status)
	}
}

func (t *terminal) prepare(ctx context.Context, args []string) {
	if !t.gate() || len(args) < 1 {
		return
	}
	if err := t.board.PrepareOrder(ctx, args[0]); err != nil {
		fmt.Println("prepare failed:", err)
		return
	}
	fmt.Printf("order %s is now in preparation\n", args[0])
}

func (t *terminal) pay(ctx context.Context, args []string) {
	if !t.gate() || len(args) < 2 {
		fmt.Println("usage: pay <order-id> <cash|mobile_money> [amount]")
		return
	}
	capture, err := t.board.StartPayment(args[0])
	if err != nil {
		fmt.Println("payment failed:", err)
		return
	}
	capture.PaymentType = args[1]
	if len(args) > 2 {
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			fmt.Println("invalid amount:", args[2])
			return
		}
		capture.AmountReceived = amount
	}
	record, err := capture.Confirm()
	if err != nil {
		fmt.Println("payment rejected:", err)
		return
	}
	if err := t.board.CompletePayment(ctx, record); err != nil {
		fmt.Println("payment failed:", err)
		return
	}
	fmt.Printf("payment confirmed for %s (%s), change %s\n",
		record.OrderID, record.PaymentType, record.ChangeAmount)
}

func (t *terminal) showStock(ctx context.Context, args []string) {
	if !t.gate() {
		return
	}
	if err := t.applyStockArgs(ctx, args); err != nil {
		fmt.Println(err)
		return
	}
	m := t.stock.Metrics()
	fmt.Printf("products %d | critical %d | stock value %s | categories %d\n",
		m.TotalProducts, m.CriticalStock, m.StockValue, m.Categories)
	for _, p := range t.stock.Paginated() {
		flag := " "
		if p.IsBelowThreshold {
			flag = "!"
		}
		fmt.Printf("%s %s  %s  %s  qty %d (min %d)\n",
			flag, p.ID, p.Name, p.CategoryName, p.StockQuantity, p.MinThreshold)
	}
	fmt.Printf("page %d/%d\n", t.stock.Page(), t.stock.TotalPages())
}

func (t *terminal) applyStockArgs(ctx context.Context, args []string) error {
	if err := t.stock.Load(ctx); err != nil {
		return fmt.Errorf("warning: could not load stock: %w", err)
	}
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "search":
		t.stock.SetSearch(strings.Join(args[1:], " "))
	case "cat":
		t.stock.SetCategoryFilter(strings.Join(args[1:], " "))
	case "oos":
		t.stock.SetOutOfStockOnly(true)
	case "page":
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				t.stock.SetPage(n)
			}
		}
	}
	return nil
}

func (t *terminal) adjust(ctx context.Context, args []string) {
	if !t.gate() || len(args) < 2 {
		fmt.Println("usage: adjust <product-id> <delta>")
		return
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("invalid delta:", args[1])
		return
	}
	if err := t.stock.AdjustStock(ctx, args[0], delta); err != nil {
		fmt.Println("adjust failed:", err)
		return
	}
	fmt.Println("stock updated")
}

func (t *terminal) showReplenishment(ctx context.Context, args []string) {
	if !t.gate() {
		return
	}
	if err := t.replen.Load(ctx); err != nil {
		fmt.Println("warning: could not load replenishment data:", err)
		// fails open — render the zeroed state anyway
	}
	if len(args) >= 2 {
		switch args[0] {
		case "status":
			t.replen.SetStatusFilter(args[1])
		case "search":
			t.replen.SetSearch(strings.Join(args[1:], " "))
		case "page":
			if n, err := strconv.Atoi(args[1]); err == nil {
				t.replen.SetPage(n)
			}
		}
	}
	m := t.replen.Metrics()
	fmt.Printf("pending %d | critical products %d\n",
		m.PendingRequestsCount, m.CriticalProductsCount)
	for _, r := range t.replen.Paginated() {
		fmt.Printf("%s  %s  %s  %d items\n", r.ID, r.Status, r.Priority, r.TotalQuantity())
	}
	fmt.Printf("page %d/%d — urgent products: %d\n",
		t.replen.Page(), t.replen.TotalPages(), len(t.replen.UrgentProducts()))
}

func (t *terminal) createRequest(ctx context.Context, args []string) {
	if !t.gate() || len(args) < 2 {
		fmt.Println("usage: request <product-id> <qty> [priority] [comment…]")
		return
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("invalid quantity:", args[1])
		return
	}
	payload := model.NewReplenishmentRequest{
		Items: []model.NewReplenishmentItem{{Product: args[0], Quantity: qty}},
	}
	if len(args) > 2 {
		payload.Priority = args[2]
	}
	if len(args) > 3 {
		payload.Comment = strings.Join(args[3:], " ")
	}
	if err := t.replen.CreateRequest(ctx, payload); err != nil {
		fmt.Println("request failed:", err)
		return
	}
	fmt.Println("replenishment request created")
}

func (t *terminal) cancelRequest(ctx context.Context, args []string) {
	if !t.gate() || len(args) < 1 {
		fmt.Println("usage: cancel <request-id>")
		return
	}
	if err := t.replen.CancelRequest(ctx, args[0]); err != nil {
		fmt.Println("cancel failed:", err)
		return
	}
	fmt.Println("request cancelled")
}

func (t *terminal) stopPoller() {
	if t.poller != nil {
		t.poller.Stop()
		t.poller = nil
	}
}
