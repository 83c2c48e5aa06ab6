package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"storefront/models"
	"storefront/utils"

	"github.com/shopspring/decimal"
)

type CheckoutState string

const (
	StateCart      CheckoutState = "cart"
	StateAddress   CheckoutState = "address"
	StatePayment   CheckoutState = "payment"
	StateSummary   CheckoutState = "summary"
	StateConfirmed CheckoutState = "confirmed"
)

var (
	ErrNoDraft         = errors.New("checkout: no draft in progress")
	ErrNoNextState     = errors.New("checkout: no further state")
	ErrNoPreviousState = errors.New("checkout: already at the first step")
	ErrPaymentRequired = errors.New("checkout: payment method not selected")
	ErrInvalidCard     = errors.New("checkout: invalid card details")
	ErrDraftIncomplete = errors.New("checkout: items, address and payment are required")
	ErrNotAtSummary    = errors.New("checkout: order can only be submitted from the summary step")
)

// OrderDraft is the in-progress order assembled across checkout steps. It is
// held in process memory only; a restart loses in-progress checkouts.
type OrderDraft struct {
	Items    []models.CartLineItem `json:"items"`
	Address  *models.Address       `json:"address,omitempty"`
	Payment  *models.Payment       `json:"payment,omitempty"`
	Shipping *decimal.Decimal      `json:"shipping,omitempty"`
	State    CheckoutState         `json:"state"`
}

func (d *OrderDraft) Subtotal() decimal.Decimal {
	return SubtotalOf(d.Items)
}

// Total is only defined once a shipping quote has been set.
func (d *OrderDraft) Total() (decimal.Decimal, bool) {
	if d.Shipping == nil {
		return decimal.Zero, false
	}
	return d.Subtotal().Add(*d.Shipping), true
}

// CanConfirm reports whether the confirm action is enabled: at least one
// item, an address and a payment method.
func (d *OrderDraft) CanConfirm() bool {
	return len(d.Items) > 0 && d.Address != nil && d.Payment != nil
}

// The summary→confirmed transition is not navigable; it only happens through
// Confirm, which submits the order.
var nextState = map[CheckoutState]CheckoutState{
	StateCart:    StateAddress,
	StateAddress: StatePayment,
	StatePayment: StateSummary,
}

var previousState = map[CheckoutState]CheckoutState{
	StateAddress: StateCart,
	StatePayment: StateAddress,
	StateSummary: StatePayment,
}

// stateGuards gate forward transitions. Entering a state with a nil guard is
// unconditional.
var stateGuards = map[CheckoutState]func(d *OrderDraft) error{
	StateSummary: func(d *OrderDraft) error {
		return validatePayment(d.Payment)
	},
}

func validatePayment(p *models.Payment) error {
	if p == nil {
		return ErrPaymentRequired
	}
	if p.Method != models.PaymentCard {
		return nil
	}
	card := p.Card
	if card == nil {
		return ErrInvalidCard
	}
	if !utils.ValidCardNumber(card.Number) || card.Holder == "" ||
		!utils.ValidExpiry(card.Expiry) || !utils.ValidCVV(card.CVV) {
		return ErrInvalidCard
	}
	return nil
}

// CheckoutService owns one OrderDraft per user. Each step merges its own
// slice into the draft; completeness is only checked by the confirm guard.
type CheckoutService struct {
	cart *CartService

	mu     sync.Mutex
	drafts map[int]*OrderDraft
}

func NewCheckoutService(cart *CartService) *CheckoutService {
	return &CheckoutService{
		cart:   cart,
		drafts: make(map[int]*OrderDraft),
	}
}

// Begin copies the current cart into a fresh draft, replacing any draft the
// user had in progress.
func (s *CheckoutService) Begin(ctx context.Context, userID int) (*OrderDraft, error) {
	items, err := s.cart.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	draft := &OrderDraft{Items: items, State: StateCart}

	s.mu.Lock()
	s.drafts[userID] = draft
	s.mu.Unlock()

	return draft, nil
}

func (s *CheckoutService) Draft(userID int) (*OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[userID]
	if !ok {
		return nil, ErrNoDraft
	}
	return draft, nil
}

// Next advances the draft one state forward, running the guard for the state
// being entered.
func (s *CheckoutService) Next(userID int) (*OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	if !ok {
		return nil, ErrNoDraft
	}

	target, ok := nextState[draft.State]
	if !ok {
		return nil, ErrNoNextState
	}
	if guard := stateGuards[target]; guard != nil {
		if err := guard(draft); err != nil {
			return nil, err
		}
	}

	draft.State = target
	return draft, nil
}

// Back re-enters the previous step without losing already-entered data.
func (s *CheckoutService) Back(userID int) (*OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	if !ok {
		return nil, ErrNoDraft
	}

	target, ok := previousState[draft.State]
	if !ok {
		return nil, ErrNoPreviousState
	}

	draft.State = target
	return draft, nil
}

func (s *CheckoutService) SetAddress(userID int, address models.Address) (*OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	if !ok {
		return nil, ErrNoDraft
	}
	draft.Address = &address
	return draft, nil
}

func (s *CheckoutService) SetPayment(userID int, payment models.Payment) (*OrderDraft, error) {
	if err := validatePayment(&payment); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	if !ok {
		return nil, ErrNoDraft
	}
	draft.Payment = &payment
	return draft, nil
}

func (s *CheckoutService) SetShipping(userID int, price decimal.Decimal) (*OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	if !ok {
		return nil, ErrNoDraft
	}
	draft.Shipping = &price
	return draft, nil
}

// Confirm runs the summary→confirmed transition: the draft must be at the
// summary step and complete, then submit persists the order. On success the
// draft is dropped and the cart is cleared; on failure the draft stays in
// summary for another attempt.
func (s *CheckoutService) Confirm(ctx context.Context, userID int, submit func(ctx context.Context, draft *OrderDraft) error) error {
	s.mu.Lock()
	draft, ok := s.drafts[userID]
	s.mu.Unlock()

	if !ok {
		return ErrNoDraft
	}
	if draft.State != StateSummary {
		return ErrNotAtSummary
	}
	if !draft.CanConfirm() {
		return ErrDraftIncomplete
	}

	if err := submit(ctx, draft); err != nil {
		return err
	}

	draft.State = StateConfirmed

	s.mu.Lock()
	delete(s.drafts, userID)
	s.mu.Unlock()

	// The order is already committed; a failed cart cleanup must not make
	// the submission look failed.
	if err := s.cart.Clear(ctx, userID); err != nil {
		log.Println("Failed to clear cart after order submission:", err)
	}
	return nil
}

// Abandon discards the draft without submitting, the same as navigating away
// from the checkout flow.
func (s *CheckoutService) Abandon(userID int) {
	s.mu.Lock()
	delete(s.drafts, userID)
	s.mu.Unlock()
}
