package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/models"
	"storefront/store"

	"github.com/shopspring/decimal"
)

// CartService keeps each user's cart as one JSON-serialized line-item list
// under a single store key. Reads normalize malformed or missing data to an
// empty cart; write failures propagate to the caller untouched.
type CartService struct {
	store store.Store
}

func NewCartService(s store.Store) *CartService {
	return &CartService{store: s}
}

func cartKey(userID int) string {
	return fmt.Sprintf("cart:%d", userID)
}

// Items returns the current cart. A missing key or unparsable value is an
// empty cart, not an error.
func (s *CartService) Items(ctx context.Context, userID int) ([]models.CartLineItem, error) {
	raw, err := s.store.Get(ctx, cartKey(userID))
	if errors.Is(err, store.ErrNotFound) {
		return []models.CartLineItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []models.CartLineItem{}, nil
	}
	if items == nil {
		items = []models.CartLineItem{}
	}
	return items, nil
}

// Add increments the quantity if the product is already in the cart,
// otherwise appends a new line item with quantity 1.
func (s *CartService) Add(ctx context.Context, userID int, product models.Product) ([]models.CartLineItem, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == product.ID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.CartLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  1,
			ImageURL:  product.ImageURL,
		})
	}

	if err := s.persist(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove filters the item out by product id. Removing an id that is not in
// the cart is a no-op.
func (s *CartService) Remove(ctx context.Context, userID, productID int) ([]models.CartLineItem, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	if err := s.persist(ctx, userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *CartService) Increment(ctx context.Context, userID, productID int) ([]models.CartLineItem, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity++
			if err := s.persist(ctx, userID, items); err != nil {
				return nil, err
			}
			break
		}
	}
	return items, nil
}

// Decrement lowers the quantity by one; reaching zero removes the item so a
// stored quantity is always at least 1.
func (s *CartService) Decrement(ctx context.Context, userID, productID int) ([]models.CartLineItem, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ProductID == productID {
			if items[i].Quantity <= 1 {
				return s.Remove(ctx, userID, productID)
			}
			items[i].Quantity--
			if err := s.persist(ctx, userID, items); err != nil {
				return nil, err
			}
			break
		}
	}
	return items, nil
}

// Subtotal is recomputed from the stored items on every call, never cached.
func (s *CartService) Subtotal(ctx context.Context, userID int) (decimal.Decimal, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return SubtotalOf(items), nil
}

func (s *CartService) ItemCount(ctx context.Context, userID int) (int, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count, nil
}

func (s *CartService) Clear(ctx context.Context, userID int) error {
	return s.persist(ctx, userID, []models.CartLineItem{})
}

func (s *CartService) persist(ctx context.Context, userID int, items []models.CartLineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, cartKey(userID), string(raw))
}

// SubtotalOf sums price times quantity over a line-item list.
func SubtotalOf(items []models.CartLineItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}
