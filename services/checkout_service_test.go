package services

import (
	"context"
	"errors"
	"testing"

	"storefront/models"
	"storefront/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture(t *testing.T) (*CheckoutService, *CartService) {
	t.Helper()
	cart := NewCartService(store.NewMemory())
	return NewCheckoutService(cart), cart
}

func validCard() *models.CardDetails {
	return &models.CardDetails{
		Number: "4111111111111111",
		Holder: "Jo Doe",
		Expiry: "12/26",
		CVV:    "123",
	}
}

func testAddress() models.Address {
	return models.Address{
		Street:       "Rua das Flores",
		Number:       "100",
		Neighborhood: "Centro",
		City:         "Sao Paulo",
		State:        "SP",
		PostalCode:   "01001000",
	}
}

// advanceToSummary walks cart → address → payment → summary. A payment must
// already be set or the last step's guard fails.
func advanceToSummary(t *testing.T, checkout *CheckoutService, userID int) {
	t.Helper()
	for i := 0; i < 3; i++ {
		_, err := checkout.Next(userID)
		require.NoError(t, err)
	}
}

func TestBeginCopiesCartItems(t *testing.T) {
	checkout, cart := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)

	draft, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, StateCart, draft.State)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 1, draft.Items[0].ProductID)
}

func TestDraftWithoutBegin(t *testing.T) {
	checkout, _ := newCheckoutFixture(t)

	_, err := checkout.Draft(1)
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestNextThroughUnconditionalSteps(t *testing.T) {
	checkout, _ := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)

	draft, err := checkout.Next(1)
	require.NoError(t, err)
	assert.Equal(t, StateAddress, draft.State)

	draft, err = checkout.Next(1)
	require.NoError(t, err)
	assert.Equal(t, StatePayment, draft.State)
}

func TestPaymentToSummaryRequiresPayment(t *testing.T) {
	checkout, _ := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)
	_, err = checkout.Next(1)
	require.NoError(t, err)
	_, err = checkout.Next(1)
	require.NoError(t, err)

	_, err = checkout.Next(1)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	_, err = checkout.SetPayment(1, models.Payment{Method: models.PaymentBoleto})
	require.NoError(t, err)

	draft, err := checkout.Next(1)
	require.NoError(t, err)
	assert.Equal(t, StateSummary, draft.State)
}

func TestCardValidation(t *testing.T) {
	checkout, _ := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)

	cases := []struct {
		name string
		card models.CardDetails
		ok   bool
	}{
		{"valid card", models.CardDetails{Number: "4111111111111111", Holder: "Jo Doe", Expiry: "12/26", CVV: "123"}, true},
		{"four digit cvv", models.CardDetails{Number: "4111111111111111", Holder: "Jo Doe", Expiry: "12/26", CVV: "1234"}, true},
		{"15 digit number", models.CardDetails{Number: "411111111111111", Holder: "Jo Doe", Expiry: "12/26", CVV: "123"}, false},
		{"month 13", models.CardDetails{Number: "4111111111111111", Holder: "Jo Doe", Expiry: "13/25", CVV: "123"}, false},
		{"2 digit cvv", models.CardDetails{Number: "4111111111111111", Holder: "Jo Doe", Expiry: "12/26", CVV: "12"}, false},
		{"empty holder", models.CardDetails{Number: "4111111111111111", Holder: "", Expiry: "12/26", CVV: "123"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := tc.card
			_, err := checkout.SetPayment(1, models.Payment{Method: models.PaymentCard, Card: &card})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidCard)
			}
		})
	}
}

func TestBackKeepsEnteredData(t *testing.T) {
	checkout, _ := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)
	_, err = checkout.Next(1)
	require.NoError(t, err)

	_, err = checkout.SetAddress(1, testAddress())
	require.NoError(t, err)

	draft, err := checkout.Back(1)
	require.NoError(t, err)
	assert.Equal(t, StateCart, draft.State)
	assert.NotNil(t, draft.Address)

	_, err = checkout.Back(1)
	assert.ErrorIs(t, err, ErrNoPreviousState)
}

func TestTotalOnlyDefinedWithShipping(t *testing.T) {
	checkout, cart := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)

	draft, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)

	_, ok := draft.Total()
	assert.False(t, ok)

	draft, err = checkout.SetShipping(1, decimal.RequireFromString("15.90"))
	require.NoError(t, err)

	total, ok := draft.Total()
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.RequireFromString("25.90")), "total = %s", total)
}

func TestCanConfirmRequiresItemsAddressAndPayment(t *testing.T) {
	checkout, cart := newCheckoutFixture(t)
	ctx := context.Background()

	draft, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)
	assert.False(t, draft.CanConfirm(), "empty cart")

	_, err = cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	draft, err = checkout.Begin(ctx, 1)
	require.NoError(t, err)
	assert.False(t, draft.CanConfirm(), "no address, no payment")

	_, err = checkout.SetAddress(1, testAddress())
	require.NoError(t, err)
	assert.False(t, draft.CanConfirm(), "no payment")

	draft, err = checkout.SetPayment(1, models.Payment{Method: models.PaymentCard, Card: validCard()})
	require.NoError(t, err)
	assert.True(t, draft.CanConfirm())
}

func TestConfirmBlockedWhenIncomplete(t *testing.T) {
	checkout, cart := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	_, err = checkout.Begin(ctx, 1)
	require.NoError(t, err)
	_, err = checkout.SetPayment(1, models.Payment{Method: models.PaymentBoleto})
	require.NoError(t, err)
	advanceToSummary(t, checkout, 1)

	err = checkout.Confirm(ctx, 1, func(context.Context, *OrderDraft) error { return nil })
	assert.ErrorIs(t, err, ErrDraftIncomplete, "no address entered")
}

func TestConfirmOnlyFromSummaryStep(t *testing.T) {
	checkout, cart := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	_, err = checkout.Begin(ctx, 1)
	require.NoError(t, err)
	_, err = checkout.SetAddress(1, testAddress())
	require.NoError(t, err)
	_, err = checkout.SetPayment(1, models.Payment{Method: models.PaymentBoleto})
	require.NoError(t, err)

	submitted := false
	err = checkout.Confirm(ctx, 1, func(context.Context, *OrderDraft) error {
		submitted = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAtSummary, "draft is complete but still at the cart step")
	assert.False(t, submitted)

	draft, err := checkout.Draft(1)
	require.NoError(t, err)
	assert.Equal(t, StateCart, draft.State)
}

func TestConfirmFailureKeepsDraftAndCart(t *testing.T) {
	checkout, cart := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	_, err = checkout.Begin(ctx, 1)
	require.NoError(t, err)
	_, err = checkout.SetAddress(1, testAddress())
	require.NoError(t, err)
	_, err = checkout.SetPayment(1, models.Payment{Method: models.PaymentBoleto})
	require.NoError(t, err)
	advanceToSummary(t, checkout, 1)

	submitErr := errors.New("backend rejected the order")
	err = checkout.Confirm(ctx, 1, func(context.Context, *OrderDraft) error { return submitErr })
	assert.ErrorIs(t, err, submitErr)

	draft, err := checkout.Draft(1)
	require.NoError(t, err)
	assert.Equal(t, StateSummary, draft.State, "draft stays at summary for another attempt")

	items, err := cart.Items(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestConfirmSuccessClearsDraftAndCart(t *testing.T) {
	checkout, cart := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	_, err = checkout.Begin(ctx, 1)
	require.NoError(t, err)
	_, err = checkout.SetAddress(1, testAddress())
	require.NoError(t, err)
	_, err = checkout.SetPayment(1, models.Payment{Method: models.PaymentCard, Card: validCard()})
	require.NoError(t, err)
	advanceToSummary(t, checkout, 1)

	submitted := false
	err = checkout.Confirm(ctx, 1, func(_ context.Context, draft *OrderDraft) error {
		submitted = true
		assert.Len(t, draft.Items, 1)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, submitted)

	_, err = checkout.Draft(1)
	assert.ErrorIs(t, err, ErrNoDraft)

	err = checkout.Confirm(ctx, 1, func(context.Context, *OrderDraft) error { return nil })
	assert.ErrorIs(t, err, ErrNoDraft, "a submitted order cannot be confirmed again")

	items, err := cart.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

type failingSetStore struct {
	*store.Memory
	failSet bool
}

func (f *failingSetStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("store unavailable")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestConfirmSucceedsWhenCartCleanupFails(t *testing.T) {
	flaky := &failingSetStore{Memory: store.NewMemory()}
	cart := NewCartService(flaky)
	checkout := NewCheckoutService(cart)
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	_, err = checkout.Begin(ctx, 1)
	require.NoError(t, err)
	_, err = checkout.SetAddress(1, testAddress())
	require.NoError(t, err)
	_, err = checkout.SetPayment(1, models.Payment{Method: models.PaymentBoleto})
	require.NoError(t, err)
	advanceToSummary(t, checkout, 1)

	flaky.failSet = true
	err = checkout.Confirm(ctx, 1, func(context.Context, *OrderDraft) error { return nil })
	require.NoError(t, err, "a committed order must not look failed because of cart cleanup")

	_, err = checkout.Draft(1)
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestAbandonDiscardsDraft(t *testing.T) {
	checkout, _ := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := checkout.Begin(ctx, 1)
	require.NoError(t, err)

	checkout.Abandon(1)

	_, err = checkout.Draft(1)
	assert.ErrorIs(t, err, ErrNoDraft)
}
