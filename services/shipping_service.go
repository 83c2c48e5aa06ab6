package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCEP  = errors.New("shipping: postal code must have 8 digits")
	ErrCEPNotFound = errors.New("shipping: postal code not found")
)

// CEPAddress is the street data returned by the postal-code lookup service.
type CEPAddress struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type cepResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	Erro         bool   `json:"erro,omitempty"`
}

type ShippingService struct {
	baseURL string
	client  *http.Client
}

func NewShippingService(baseURL string) *ShippingService {
	return &ShippingService{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// LookupCEP resolves an 8-digit postal code. The service's error flag and a
// transport failure are reported identically: the code was not found.
func (s *ShippingService) LookupCEP(ctx context.Context, cep string) (*CEPAddress, error) {
	digits := utils.Digits(cep)
	if len(digits) != 8 {
		return nil, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/%s/json/", s.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, ErrCEPNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrCEPNotFound
	}

	var body cepResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, ErrCEPNotFound
	}
	if body.Erro {
		return nil, ErrCEPNotFound
	}

	return &CEPAddress{
		CEP:          body.CEP,
		Street:       body.Street,
		Complement:   body.Complement,
		Neighborhood: body.Neighborhood,
		City:         body.City,
		State:        body.State,
	}, nil
}

// baseRate is the flat freight applied to the southeast region.
var baseRate = decimal.RequireFromString("15.90")

// regionSurcharge is keyed by the first CEP digit (Brazilian postal
// regions, 0-9).
var regionSurcharge = map[byte]string{
	'0': "0.00", '1': "0.00", '2': "4.10", '3': "4.10",
	'4': "8.60", '5': "8.60", '6': "14.10", '7': "10.10",
	'8': "6.10", '9': "9.10",
}

// Quote prices delivery for a postal code. The code must already be valid.
func (s *ShippingService) Quote(cep string) (decimal.Decimal, error) {
	digits := utils.Digits(cep)
	if len(digits) != 8 {
		return decimal.Zero, ErrInvalidCEP
	}

	surcharge := regionSurcharge[digits[0]]
	return baseRate.Add(decimal.RequireFromString(surcharge)), nil
}
