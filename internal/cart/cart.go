// Package cart holds shopping cart state as a plain value changed only by
// Reduce, and a Store that persists it through a pluggable Storage.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Currency  string          `json:"currency"`
	Quantity  int             `json:"quantity"`
}

type State struct {
	Items []Item `json:"items"`
}

// Total is the sum of price times quantity over all lines.
func (s State) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Count is the number of units in the cart.
func (s State) Count() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

type Action interface {
	apply(State) State
}

// AddItem puts one unit of the item in the cart.
type AddItem struct {
	Item Item
}

type RemoveItem struct {
	ProductID string
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

type Clear struct{}

// Reduce returns the state that results from applying a to s. s is not modified.
func Reduce(s State, a Action) State {
	return a.apply(s)
}

func (a AddItem) apply(s State) State {
	items := make([]Item, 0, len(s.Items)+1)
	found := false
	for _, item := range s.Items {
		if item.ProductID == a.Item.ProductID {
			item.Quantity++
			found = true
		}
		items = append(items, item)
	}
	if !found {
		added := a.Item
		added.Quantity = 1
		items = append(items, added)
	}
	return State{Items: items}
}

func (a RemoveItem) apply(s State) State {
	items := make([]Item, 0, len(s.Items))
	for _, item := range s.Items {
		if item.ProductID != a.ProductID {
			items = append(items, item)
		}
	}
	return State{Items: items}
}

func (a UpdateQuantity) apply(s State) State {
	if a.Quantity <= 0 {
		return RemoveItem{ProductID: a.ProductID}.apply(s)
	}
	items := make([]Item, len(s.Items))
	for i, item := range s.Items {
		if item.ProductID == a.ProductID {
			item.Quantity = a.Quantity
		}
		items[i] = item
	}
	return State{Items: items}
}

func (Clear) apply(State) State {
	return State{Items: []Item{}}
}

// Storage persists cart state by cart id. Load of an unknown cart returns an
// empty state, not an error.
type Storage interface {
	Load(ctx context.Context, cartID string) (State, error)
	Save(ctx context.Context, cartID string, state State) error
}

type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

func (s *Store) Get(ctx context.Context, cartID string) (State, error) {
	return s.storage.Load(ctx, cartID)
}

// Dispatch loads the cart, applies the action and saves the result.
func (s *Store) Dispatch(ctx context.Context, cartID string, action Action) (State, error) {
	state, err := s.storage.Load(ctx, cartID)
	if err != nil {
		return State{}, err
	}
	next := Reduce(state, action)
	if err := s.storage.Save(ctx, cartID, next); err != nil {
		return State{}, err
	}
	return next, nil
}
