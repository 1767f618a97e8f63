package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"smartbuy-backend/config"
	"smartbuy-backend/internal/shopping"
	"smartbuy-backend/internal/store"
)

// Local storage keys shared with the receipt view.
const (
	BasketKey = "checkout_basket"
	TotalKey  = "checkout_total"
)

var (
	ErrEmptyBasket     = errors.New("checkout: basket is empty")
	ErrPaymentDeclined = errors.New("checkout: payment declined")
)

// BasketItem is a collected entry with a display price.
type BasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Collected bool   `json:"collected"`
	Section   string `json:"section"`
	RackID    string `json:"rackId,omitempty"`
	Photo     string `json:"photo,omitempty"`
	Price     string `json:"price"`
}

// Snapshot is what a successful checkout persisted.
type Snapshot struct {
	Items []BasketItem `json:"items"`
	Total string       `json:"total"`
}

// Receipt is the read side of the last checkout.
type Receipt struct {
	OrderID  string       `json:"orderId"`
	IssuedAt time.Time    `json:"issuedAt"`
	Items    []BasketItem `json:"items"`
	Total    string       `json:"total"`
}

// Service prices baskets, runs the mock payment and serves receipts.
type Service struct {
	store        store.Store
	minPrice     float64
	maxPrice     float64
	paymentDelay time.Duration
	now          func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a checkout service from the checkout config section.
func NewService(s store.Store, cfg config.CheckoutConfig) *Service {
	return &Service{
		store:        s,
		minPrice:     cfg.MinPrice,
		maxPrice:     cfg.MaxPrice,
		paymentDelay: cfg.PaymentDelay,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Checkout prices the collected entries, charges them and writes the basket
// and total for the receipt. Every call re-prices and overwrites.
func (s *Service) Checkout(ctx context.Context, entries []shopping.Entry) (Snapshot, error) {
	items := make([]BasketItem, 0, len(entries))
	var cents int64
	for _, e := range entries {
		if !e.Collected {
			continue
		}
		p := s.price()
		cents += p
		items = append(items, BasketItem{
			ID:        e.ID,
			Name:      e.Name,
			Collected: true,
			Section:   e.Section,
			RackID:    e.Rack,
			Photo:     e.Photo,
			Price:     formatCents(p),
		})
	}
	snap := Snapshot{Items: items, Total: formatCents(cents)}

	if err := s.pay(ctx, cents); err != nil {
		return Snapshot{}, err
	}

	basket, err := json.Marshal(items)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode basket: %w", err)
	}
	if err := s.store.SetItems(ctx, map[string]string{
		BasketKey: string(basket),
		TotalKey:  snap.Total,
	}); err != nil {
		return Snapshot{}, fmt.Errorf("failed to persist checkout: %w", err)
	}

	log.Printf("Checkout complete: %d items, total %s", len(items), snap.Total)
	return snap, nil
}

// pay simulates the card processor round trip.
func (s *Service) pay(ctx context.Context, cents int64) error {
	if cents <= 0 {
		return ErrEmptyBasket
	}
	if s.paymentDelay > 0 {
		t := time.NewTimer(s.paymentDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrPaymentDeclined, ctx.Err())
		}
	}
	return nil
}

// Receipt reads the last checkout. Missing or malformed data yields an
// empty basket with a zero total.
func (s *Service) Receipt(ctx context.Context) (Receipt, error) {
	r := Receipt{
		OrderID:  s.orderID(),
		IssuedAt: s.now(),
		Items:    []BasketItem{},
		Total:    "0.00",
	}

	raw, found, err := s.store.GetItem(ctx, BasketKey)
	if err != nil {
		return Receipt{}, err
	}
	if found {
		var items []BasketItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			log.Printf("Ignoring malformed %s: %v", BasketKey, err)
		} else if items != nil {
			r.Items = items
		}
	}

	total, found, err := s.store.GetItem(ctx, TotalKey)
	if err != nil {
		return Receipt{}, err
	}
	if found {
		if v, err := strconv.ParseFloat(total, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			r.Total = strconv.FormatFloat(v, 'f', 2, 64)
		} else {
			log.Printf("Ignoring malformed %s: %q", TotalKey, total)
		}
	}
	return r, nil
}

// price returns a uniform price in [minPrice, maxPrice] in cents.
func (s *Service) price() int64 {
	lo := int64(math.Round(s.minPrice * 100))
	hi := int64(math.Round(s.maxPrice * 100))
	if hi < lo {
		hi = lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Int63n(hi-lo+1)
}

func (s *Service) orderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("ORD-%d", 100000+s.rng.Intn(900000))
}

func formatCents(c int64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
