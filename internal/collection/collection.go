// Package collection holds the merchant's item list as shown in the
// dashboard, together with the two-step delete confirmation.
package collection

import (
	"context"
	"errors"
	"sync"

	"tokodash/internal/client"
	"tokodash/internal/models"
	"tokodash/internal/session"

	"go.uber.org/zap"
)

// Messages shown by the collection.
const (
	MsgDeleted      = "Item deleted successfully!"
	MsgDeleteFailed = "An error occurred while deleting the item."
	MsgLoadFailed   = "Could not load items: "
)

var (
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("no delete pending")
	// ErrDeleteInFlight is returned while a confirmed delete is still running.
	ErrDeleteInFlight = errors.New("delete already in progress")
)

// Session is the read side of the session store.
type Session interface {
	Snapshot() session.Snapshot
}

// View is a copy of the collection state for rendering.
type View struct {
	Items         []models.Item
	PendingDelete *models.Item
	Deleting      bool
	Loading       bool
	Error         string // general error of the last operation
	Success       string
	Notice        string // non-blocking notice, e.g. a failed list fetch
}

// Collection owns the local item list. Loads are ordered by a request
// sequence: only the response of the most recently issued load is applied.
type Collection struct {
	svc     client.ItemService
	session Session
	logger  *zap.Logger

	mu       sync.Mutex
	items    []models.Item
	seq      uint64
	inFlight int
	loaded   bool
	loadedAs session.Identity
	pending  *models.Item
	deleting bool
	errMsg   string
	success  string
	notice   string
}

// New creates an empty Collection. logger may be nil.
func New(svc client.ItemService, sess Session, logger *zap.Logger) *Collection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection{
		svc:     svc,
		session: sess,
		logger:  logger,
	}
}

// Load fetches the full item list and replaces the local one. When the
// session is not authenticated the list is cleared and nothing is fetched.
// A failed fetch leaves the last known list and sets a notice.
func (c *Collection) Load(ctx context.Context) {
	snap := c.session.Snapshot()

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if !snap.Authenticated {
		c.items = nil
		c.loaded = false
		c.loadedAs = session.Identity{}
		c.mu.Unlock()
		return
	}
	c.inFlight++
	c.mu.Unlock()

	items, err := c.svc.ListItems(ctx, snap.Token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if seq != c.seq {
		c.logger.Debug("dropping stale item list", zap.Uint64("seq", seq), zap.Uint64("latest", c.seq))
		return
	}
	if err != nil {
		c.logger.Warn("loading items failed", zap.Error(err))
		msg := models.ServerMessage(err)
		if msg == "" {
			msg = err.Error()
		}
		c.notice = MsgLoadFailed + msg
		return
	}
	c.items = append([]models.Item(nil), items...)
	c.loaded = true
	c.loadedAs = snap.Identity
	c.notice = ""
}

// OnSessionChange reloads when the authenticated identity changed and clears
// the list on logout.
func (c *Collection) OnSessionChange(ctx context.Context, snap session.Snapshot) {
	c.mu.Lock()
	same := snap.Authenticated && c.loaded && snap.Identity == c.loadedAs
	c.mu.Unlock()
	if same {
		return
	}
	c.Load(ctx)
}

// ApplyDelete removes the item with id. Absent ids are ignored. A load issued
// before the removal is discarded when it resolves.
func (c *Collection) ApplyDelete(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyDeleteLocked(id)
}

func (c *Collection) applyDeleteLocked(id int64) {
	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			c.seq++
			return
		}
	}
}

// ApplyUpdate replaces the entry sharing item's id in place. Absent ids are
// ignored. A load issued before the update is discarded when it resolves.
func (c *Collection) ApplyUpdate(item models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			c.seq++
			return
		}
	}
}

// RequestCreateRefresh reloads the list after an item was created.
func (c *Collection) RequestCreateRefresh(ctx context.Context) {
	c.Load(ctx)
}

// RequestDelete asks for confirmation before deleting item.
func (c *Collection) RequestDelete(item models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting {
		return
	}
	c.pending = &item
	c.errMsg = ""
	c.success = ""
}

// CancelDelete discards the pending delete without any remote call.
func (c *Collection) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting {
		return
	}
	c.pending = nil
}

// ConfirmDelete deletes the pending item remotely and removes it locally once
// the server confirms. On failure the item stays and Error is set.
func (c *Collection) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	if c.deleting {
		c.mu.Unlock()
		return ErrDeleteInFlight
	}
	c.deleting = true
	item := *c.pending
	c.mu.Unlock()

	err := c.svc.DeleteItem(ctx, c.session.Snapshot().Token, item.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleting = false
	c.pending = nil
	if err != nil {
		c.logger.Warn("deleting item failed", zap.Int64("item_id", item.ID), zap.Error(err))
		c.errMsg = models.ServerMessage(err)
		if c.errMsg == "" {
			c.errMsg = MsgDeleteFailed
		}
		return nil
	}
	c.applyDeleteLocked(item.ID)
	c.errMsg = ""
	c.success = MsgDeleted
	return nil
}

// Item returns the local item with id.
func (c *Collection) Item(id int64) (models.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.Item{}, false
}

// Notify sets a non-blocking notice.
func (c *Collection) Notify(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = msg
}

// ClearMessages drops the error, success and notice messages.
func (c *Collection) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
	c.success = ""
	c.notice = ""
}

// View returns a snapshot of the collection.
func (c *Collection) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		Items:    append([]models.Item(nil), c.items...),
		Deleting: c.deleting,
		Loading:  c.inFlight > 0,
		Error:    c.errMsg,
		Success:  c.success,
		Notice:   c.notice,
	}
	if c.pending != nil {
		p := *c.pending
		v.PendingDelete = &p
	}
	return v
}
