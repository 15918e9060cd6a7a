package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	pb "github.com/sbilibin2017/proto-exchange/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// --- Fake gRPC client ---
type fakeExchangeClient struct {
	rates           map[string]float32
	rateForCurrency float32
	err             error
	calls           int
}

func (f *fakeExchangeClient) GetExchangeRates(ctx context.Context, _ *pb.Empty, opts ...grpc.CallOption) (*pb.ExchangeRatesResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &pb.ExchangeRatesResponse{Rates: f.rates}, nil
}

func (f *fakeExchangeClient) GetExchangeRateForCurrency(ctx context.Context, req *pb.CurrencyRequest, opts ...grpc.CallOption) (*pb.ExchangeRateResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &pb.ExchangeRateResponse{FromCurrency: req.FromCurrency, ToCurrency: req.ToCurrency, Rate: f.rateForCurrency}, nil
}

func TestExchangerProvider_Fetch(t *testing.T) {
	client := &fakeExchangeClient{rateForCurrency: 1.25}
	p := NewExchangerProvider(client)

	rate, err := p.Fetch(context.Background(), "USD", "EUR", nil)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat32(1.25)))
	assert.Equal(t, 1, client.calls)
}

func TestExchangerProvider_FetchWithoutCall(t *testing.T) {
	client := &fakeExchangeClient{rateForCurrency: 1.25}
	p := NewExchangerProvider(client)

	rate, err := p.Fetch(context.Background(), "EUR", "eur", nil)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))

	date := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = p.Fetch(context.Background(), "USD", "EUR", &date)
	assert.ErrorIs(t, err, providerError(apperrors.CodeAPI))

	assert.Zero(t, client.calls)
}

func TestExchangerProvider_FetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		rate float32
		code string
	}{
		{"not found", status.Error(codes.NotFound, "no rate"), 0, apperrors.CodeRateNotFound},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad code"), 0, apperrors.CodeInvalidCurrency},
		{"exhausted", status.Error(codes.ResourceExhausted, "slow down"), 0, apperrors.CodeUpstreamLimit},
		{"unavailable", status.Error(codes.Unavailable, "down"), 0, apperrors.CodeNetwork},
		{"deadline", status.Error(codes.DeadlineExceeded, "timeout"), 0, apperrors.CodeNetwork},
		{"internal", status.Error(codes.Internal, "boom"), 0, apperrors.CodeAPI},
		{"plain error", errors.New("grpc error"), 0, apperrors.CodeAPI},
		{"zero rate", nil, 0, apperrors.CodeInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewExchangerProvider(&fakeExchangeClient{err: tt.err, rateForCurrency: tt.rate})
			_, err := p.Fetch(context.Background(), "USD", "EUR", nil)
			assert.ErrorIs(t, err, providerError(tt.code))
		})
	}
}

func TestExchangerProvider_IsAvailable(t *testing.T) {
	up := NewExchangerProvider(&fakeExchangeClient{rates: map[string]float32{"USD": 1, "EUR": 0.9}})
	assert.True(t, up.IsAvailable(context.Background()))

	down := NewExchangerProvider(&fakeExchangeClient{err: status.Error(codes.Unavailable, "down")})
	assert.False(t, down.IsAvailable(context.Background()))
}

func TestExchangerProvider_Meta(t *testing.T) {
	p := NewExchangerProvider(&fakeExchangeClient{})
	assert.Equal(t, "exchanger", p.Name())
	assert.Contains(t, p.SupportedCurrencies(), "USD")
}
