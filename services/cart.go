package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
)

var ErrCartNotFound = errors.New("cart not found")

type CartEntry struct {
	MenuItem models.MenuItem `json:"menu_item"`
	Quantity int             `json:"quantity"`
}

// Cart is an ordered list of selected menu items. It is not safe for
// concurrent use; CartStore serializes access.
type Cart struct {
	ID    string
	Items []CartEntry

	lastTouched time.Time
}

func NewCart(id string) *Cart {
	return &Cart{ID: id}
}

// AddToCart appends the item, or increments its quantity when already present.
func (c *Cart) AddToCart(item models.MenuItem, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].MenuItem.ID == item.ID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, CartEntry{MenuItem: item, Quantity: quantity})
}

// UpdateQuantity sets the quantity exactly; zero or less removes the item.
func (c *Cart) UpdateQuantity(itemID uint, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(itemID)
		return
	}
	for i := range c.Items {
		if c.Items[i].MenuItem.ID == itemID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) RemoveFromCart(itemID uint) {
	for i := range c.Items {
		if c.Items[i].MenuItem.ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

func (c *Cart) TotalAmount() float64 {
	var total float64
	for _, entry := range c.Items {
		total += entry.MenuItem.Price * float64(entry.Quantity)
	}
	return utils.Round2(total)
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, entry := range c.Items {
		count += entry.Quantity
	}
	return count
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Lines converts the cart into priced booking lines.
func (c *Cart) Lines() []BookingLine {
	lines := make([]BookingLine, 0, len(c.Items))
	for _, entry := range c.Items {
		lines = append(lines, BookingLine{
			MenuItemID: entry.MenuItem.ID,
			Name:       entry.MenuItem.Name,
			Price:      entry.MenuItem.Price,
			Quantity:   entry.Quantity,
		})
	}
	return lines
}

type CartSnapshot struct {
	ID          string      `json:"id"`
	Items       []CartEntry `json:"items"`
	ItemCount   int         `json:"item_count"`
	TotalAmount float64     `json:"total_amount"`
}

func (c *Cart) snapshot() CartSnapshot {
	items := make([]CartEntry, len(c.Items))
	copy(items, c.Items)
	return CartSnapshot{
		ID:          c.ID,
		Items:       items,
		ItemCount:   c.ItemCount(),
		TotalAmount: c.TotalAmount(),
	}
}

// DefaultCartIdleTTL is how long an untouched cart is kept.
const DefaultCartIdleTTL = 2 * time.Hour

// CartStore keeps carts in memory only; nothing survives a restart. Carts
// idle for longer than idleTTL are swept on the next store access.
type CartStore struct {
	idleTTL time.Duration
	now     func() time.Time

	mu     sync.Mutex
	carts  map[string]*Cart
	lastGC time.Time
}

func NewCartStore() *CartStore {
	return NewCartStoreWithTTL(DefaultCartIdleTTL)
}

func NewCartStoreWithTTL(idleTTL time.Duration) *CartStore {
	if idleTTL <= 0 {
		idleTTL = DefaultCartIdleTTL
	}
	return &CartStore{idleTTL: idleTTL, now: time.Now, carts: make(map[string]*Cart)}
}

// Open starts a new, empty cart.
func (s *CartStore) Open() CartSnapshot {
	cart := NewCart(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	cart.lastTouched = s.sweepLocked()
	s.carts[cart.ID] = cart
	return cart.snapshot()
}

// Len reports how many carts are held.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func (s *CartStore) sweepLocked() time.Time {
	now := s.now()
	if now.Sub(s.lastGC) < s.idleTTL/4 {
		return now
	}
	for id, cart := range s.carts {
		if now.Sub(cart.lastTouched) > s.idleTTL {
			delete(s.carts, id)
		}
	}
	s.lastGC = now
	return now
}

func (s *CartStore) Get(cartID string) (CartSnapshot, error) {
	var snap CartSnapshot
	err := s.with(cartID, func(c *Cart) { snap = c.snapshot() })
	return snap, err
}

func (s *CartStore) Add(cartID string, item models.MenuItem, quantity int) (CartSnapshot, error) {
	var snap CartSnapshot
	err := s.with(cartID, func(c *Cart) {
		c.AddToCart(item, quantity)
		snap = c.snapshot()
	})
	return snap, err
}

func (s *CartStore) UpdateQuantity(cartID string, itemID uint, quantity int) (CartSnapshot, error) {
	var snap CartSnapshot
	err := s.with(cartID, func(c *Cart) {
		c.UpdateQuantity(itemID, quantity)
		snap = c.snapshot()
	})
	return snap, err
}

func (s *CartStore) Remove(cartID string, itemID uint) (CartSnapshot, error) {
	var snap CartSnapshot
	err := s.with(cartID, func(c *Cart) {
		c.RemoveFromCart(itemID)
		snap = c.snapshot()
	})
	return snap, err
}

func (s *CartStore) Lines(cartID string) ([]BookingLine, error) {
	var lines []BookingLine
	err := s.with(cartID, func(c *Cart) { lines = c.Lines() })
	return lines, err
}

func (s *CartStore) Clear(cartID string) error {
	return s.with(cartID, func(c *Cart) { c.Clear() })
}

// Discard drops the cart once it has become an order or reservation.
func (s *CartStore) Discard(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
}

func (s *CartStore) with(cartID string, fn func(*Cart)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.sweepLocked()
	cart, ok := s.carts[cartID]
	if !ok || now.Sub(cart.lastTouched) > s.idleTTL {
		delete(s.carts, cartID)
		return ErrCartNotFound
	}
	cart.lastTouched = now
	fn(cart)
	return nil
}
