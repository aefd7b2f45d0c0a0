package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/veritabl/scorer/internal/domain"
)

var tracer = otel.Tracer("scorer")

// Calculator produces a trust score from a passport's current stamps. The
// formula itself is a collaborator concern; the lifecycle only depends on
// this contract.
type Calculator interface {
	Calculate(ctx context.Context, passport domain.Passport, stamps []domain.Stamp) (domain.CalculationResult, error)
}

// WeightedCalculator credits each distinct provider once with its configured
// weight and sums the credits. Duplicate providers across stamps never
// double-count.
type WeightedCalculator struct {
	weights       map[string]decimal.Decimal
	defaultWeight decimal.Decimal
}

func NewWeightedCalculator(weights map[string]decimal.Decimal, defaultWeight decimal.Decimal) *WeightedCalculator {
	if weights == nil {
		weights = map[string]decimal.Decimal{}
	}
	return &WeightedCalculator{weights: weights, defaultWeight: defaultWeight}
}

func (c *WeightedCalculator) Calculate(ctx context.Context, passport domain.Passport, stamps []domain.Stamp) (domain.CalculationResult, error) {
	_, span := tracer.Start(ctx, "Calculator.Calculate")
	defer span.End()

	credited := map[string]decimal.Decimal{}
	for _, stamp := range stamps {
		if len(stamp.Credential) > 0 && !json.Valid(stamp.Credential) {
			err := domain.ComputationError{
				Reason: fmt.Sprintf("stamp %s has malformed credential document", stamp.Hash),
			}
			span.RecordError(errors.Wrap(err, "score calculation aborted"))
			return domain.CalculationResult{}, err
		}
		if stamp.Provider == "" {
			err := domain.ComputationError{
				Reason: fmt.Sprintf("stamp %s has no provider", stamp.Hash),
			}
			span.RecordError(errors.Wrap(err, "score calculation aborted"))
			return domain.CalculationResult{}, err
		}
		if _, ok := credited[stamp.Provider]; ok {
			continue
		}
		weight, ok := c.weights[stamp.Provider]
		if !ok {
			weight = c.defaultWeight
		}
		credited[stamp.Provider] = weight
	}

	total := decimal.Zero
	providers := make([]string, 0, len(credited))
	for provider, weight := range credited {
		total = total.Add(weight)
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	breakdown := make(map[string]string, len(credited))
	for provider, weight := range credited {
		breakdown[provider] = weight.String()
	}
	evidence, err := json.Marshal(breakdown)
	if err != nil {
		return domain.CalculationResult{}, errors.Wrap(err, "marshal score evidence")
	}

	return domain.CalculationResult{
		Score:     total,
		Evidence:  evidence,
		Providers: providers,
	}, nil
}
