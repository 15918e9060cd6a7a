package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	pb "github.com/sbilibin2017/proto-exchange/exchange"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ExchangerProvider reads live rates from the exchanger gRPC service.
type ExchangerProvider struct {
	client pb.ExchangeServiceClient
}

func NewExchangerProvider(client pb.ExchangeServiceClient) *ExchangerProvider {
	return &ExchangerProvider{client: client}
}

func (p *ExchangerProvider) Name() string { return "exchanger" }

// Fetch returns the live rate for from->to. The exchanger keeps no history,
// so any explicit date is rejected.
func (p *ExchangerProvider) Fetch(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error) {
	if models.SameCurrency(from, to) {
		return decimal.NewFromInt(1), nil
	}
	if date != nil {
		return decimal.Zero, apperrors.Provider(apperrors.CodeAPI, "historical rates are not supported by exchanger", nil)
	}

	resp, err := p.client.GetExchangeRateForCurrency(ctx, &pb.CurrencyRequest{
		FromCurrency: from,
		ToCurrency:   to,
	})
	if err != nil {
		logger.Log.Errorw("failed to fetch exchange rate for currency via gRPC",
			"from", from, "to", to, "error", err)
		return decimal.Zero, classifyStatus(err)
	}

	rate := decimal.NewFromFloat32(resp.Rate)
	if !rate.IsPositive() {
		return decimal.Zero, apperrors.Provider(apperrors.CodeInvalidResponse,
			fmt.Sprintf("non-positive rate %s for %s to %s", rate, from, to), nil)
	}
	return rate, nil
}

func classifyStatus(err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return apperrors.Provider(apperrors.CodeRateNotFound, st.Message(), err)
	case codes.InvalidArgument:
		return apperrors.Provider(apperrors.CodeInvalidCurrency, st.Message(), err)
	case codes.ResourceExhausted:
		return apperrors.Provider(apperrors.CodeUpstreamLimit, st.Message(), err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return apperrors.Provider(apperrors.CodeNetwork, st.Message(), err)
	default:
		return apperrors.Provider(apperrors.CodeAPI, st.Message(), err)
	}
}

// IsAvailable reports whether the full rate table can be read.
func (p *ExchangerProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.GetExchangeRates(ctx, &pb.Empty{})
	if err != nil {
		logger.Log.Warnw("exchanger unavailable", "error", err)
		return false
	}
	return true
}

func (p *ExchangerProvider) SupportedCurrencies() []string {
	out := make([]string, len(defaultCurrencies))
	copy(out, defaultCurrencies)
	return out
}
