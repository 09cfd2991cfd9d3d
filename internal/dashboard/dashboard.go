// Package dashboard ties the session, the item collection and the item form
// together behind panel navigation.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"tokodash/internal/client"
	"tokodash/internal/collection"
	"tokodash/internal/form"
	"tokodash/internal/models"
	"tokodash/internal/session"

	"go.uber.org/zap"
)

// Panel names a dashboard panel.
type Panel string

const (
	PanelOverview Panel = "overview"
	PanelItems    Panel = "items"
	PanelOrders   Panel = "orders"
)

// Panels lists the panels in navigation order.
var Panels = []Panel{PanelOverview, PanelItems, PanelOrders}

const maxNotices = 5

// Session is the session store as used by the shell.
type Session interface {
	Snapshot() session.Snapshot
	Token() string
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// OrderLister fetches the merchant's orders.
type OrderLister interface {
	ListOrders(ctx context.Context, token string) ([]models.Order, error)
}

// Options configures a Shell.
type Options struct {
	Session Session
	Items   client.ItemService
	Orders  OrderLister // optional
	Logger  *zap.Logger
}

// Summary is the content of the overview panel.
type Summary struct {
	Username   string
	StoreName  string
	ItemCount  int
	StockUnits int
	StockValue float64
	OrderCount int
}

// Shell is the dashboard. The item collection is mounted only while the items
// panel is selected.
type Shell struct {
	session Session
	orders  OrderLister
	logger  *zap.Logger

	Items *collection.Collection
	Form  *form.Form

	mu          sync.Mutex
	panel       Panel
	unsubscribe func()
	cancel      context.CancelFunc
	mountGen    uint64
	live        bool
	reloads     sync.WaitGroup
	notices     []string
	orderList   []models.Order
	ordersErr   string
}

// New creates a Shell showing the overview panel.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		session: opts.Session,
		orders:  opts.Orders,
		logger:  logger,
		panel:   PanelOverview,
	}
	s.Items = collection.New(opts.Items, opts.Session, logger.Named("items"))
	s.Form = form.New(opts.Items, opts.Session, s.Items, s, logger.Named("form"))
	return s
}

// Panel returns the selected panel.
func (s *Shell) Panel() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

// Mounted reports whether the item collection is mounted.
func (s *Shell) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribe != nil
}

// Select switches to panel. Entering the items panel subscribes the
// collection to session changes and loads it, and every later login, logout
// or identity change reloads it in the background; leaving it unsubscribes and
// closes the form. Entering the orders panel fetches orders. It blocks until
// those fetches finish.
func (s *Shell) Select(ctx context.Context, panel Panel) error {
	if !validPanel(panel) {
		return fmt.Errorf("unknown panel %q", panel)
	}

	s.mu.Lock()
	prev := s.panel
	s.panel = panel
	s.mu.Unlock()

	if prev == PanelItems && panel != PanelItems {
		s.unmount()
	}
	switch {
	case panel == PanelItems && prev != PanelItems:
		s.mount(ctx)
	case panel == PanelOrders:
		s.RefreshOrders(ctx)
	}
	return nil
}

func validPanel(p Panel) bool {
	for _, known := range Panels {
		if p == known {
			return true
		}
	}
	return false
}

func (s *Shell) mount(ctx context.Context) {
	mctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.mountGen++
	gen := s.mountGen
	s.live = true
	s.mu.Unlock()

	// The store may still deliver to a callback it copied before
	// unsubscribe, so reloads are only started for the current mount.
	unsubscribe := s.session.Subscribe(func(snap session.Snapshot) {
		s.mu.Lock()
		if !s.live || s.mountGen != gen {
			s.mu.Unlock()
			return
		}
		s.reloads.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.reloads.Done()
			s.Items.OnSessionChange(mctx, snap)
		}()
	})

	s.mu.Lock()
	s.cancel = cancel
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	s.logger.Debug("items panel mounted")
	s.Items.Load(mctx)
}

func (s *Shell) unmount() {
	s.mu.Lock()
	unsubscribe, cancel := s.unsubscribe, s.cancel
	s.unsubscribe, s.cancel = nil, nil
	s.live = false
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	s.reloads.Wait()
	s.Form.Close()
	s.logger.Debug("items panel unmounted")
}

// Close unmounts the items panel if it is mounted.
func (s *Shell) Close() {
	s.unmount()
}

// RefreshOrders fetches the merchant's orders.
func (s *Shell) RefreshOrders(ctx context.Context) {
	if s.orders == nil {
		return
	}
	snap := s.session.Snapshot()
	if !snap.Authenticated {
		s.mu.Lock()
		s.orderList = nil
		s.ordersErr = ""
		s.mu.Unlock()
		return
	}

	orders, err := s.orders.ListOrders(ctx, snap.Token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("loading orders failed", zap.Error(err))
		msg := models.ServerMessage(err)
		if msg == "" {
			msg = err.Error()
		}
		s.ordersErr = "Could not load orders: " + msg
		return
	}
	s.orderList = orders
	s.ordersErr = ""
}

// Orders returns the last fetched orders and the last fetch error.
func (s *Shell) Orders() ([]models.Order, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.orderList...), s.ordersErr
}

// Notify records a transient notice. Only the latest few are kept.
func (s *Shell) Notify(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

// Notices returns the pending notices.
func (s *Shell) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

// DismissNotices drops all notices.
func (s *Shell) DismissNotices() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
}

// Summary computes the overview from the last known items and orders.
func (s *Shell) Summary() Summary {
	snap := s.session.Snapshot()
	sum := Summary{
		Username:  snap.Identity.Username,
		StoreName: snap.Identity.StoreName,
	}
	for _, it := range s.Items.View().Items {
		sum.ItemCount++
		sum.StockUnits += it.Quantity
		sum.StockValue += float64(it.Quantity) * it.Price
	}
	orders, _ := s.Orders()
	sum.OrderCount = len(orders)
	return sum
}
