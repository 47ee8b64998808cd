package channel

import "github.com/shopspring/decimal"

// CalculateTargetPrice computes the storefront retail price from the
// marketplace source price, the current exchange rate and the mapping's
// margin: round(source × rate × margin, 2dp). The margin is validated before
// any arithmetic and the intermediate product is kept at full precision;
// rounding is applied exactly once at the end so errors never compound.
func CalculateTargetPrice(sourcePrice, rate, margin decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateMargin(margin); err != nil {
		return decimal.Zero, err
	}
	if !sourcePrice.IsPositive() || !rate.IsPositive() {
		return decimal.Zero, ErrValidation
	}
	return sourcePrice.Mul(rate).Mul(margin).Round(2), nil
}
