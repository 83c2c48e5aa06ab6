package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCEPRejectsShortCode(t *testing.T) {
	svc := NewShippingService("http://localhost:0")

	_, err := svc.LookupCEP(context.Background(), "1234")
	assert.ErrorIs(t, err, ErrInvalidCEP)
}

func TestLookupCEPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/01001000/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cep":"01001-000","logradouro":"Praca da Se","bairro":"Se","localidade":"Sao Paulo","uf":"SP"}`))
	}))
	defer server.Close()

	svc := NewShippingService(server.URL)

	address, err := svc.LookupCEP(context.Background(), "01001-000")
	require.NoError(t, err)
	assert.Equal(t, "Praca da Se", address.Street)
	assert.Equal(t, "Sao Paulo", address.City)
	assert.Equal(t, "SP", address.State)
}

func TestLookupCEPErrorFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"erro":true}`))
	}))
	defer server.Close()

	svc := NewShippingService(server.URL)

	_, err := svc.LookupCEP(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrCEPNotFound)
}

func TestLookupCEPTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewShippingService(server.URL)

	_, err := svc.LookupCEP(context.Background(), "01001000")
	assert.ErrorIs(t, err, ErrCEPNotFound)
}

func TestQuoteByRegion(t *testing.T) {
	svc := NewShippingService("")

	quote, err := svc.Quote("01001-000")
	require.NoError(t, err)
	assert.True(t, quote.Equal(decimal.RequireFromString("15.90")), "quote = %s", quote)

	quote, err = svc.Quote("69000000")
	require.NoError(t, err)
	assert.True(t, quote.GreaterThan(decimal.RequireFromString("15.90")))

	_, err = svc.Quote("123")
	assert.ErrorIs(t, err, ErrInvalidCEP)
}
