package gateway

import (
	"payment-core/config"
	"payment-core/internal/core/ports"

	"github.com/rs/zerolog"
)

// Factory routes checkout requests and webhooks to the right provider.
// The adapter set is closed and constructed once at startup; the name-keyed
// lookup exists only because webhooks carry the provider as a query string.
type Factory struct {
	wayl      ports.GatewayAdapter
	zain      ports.GatewayAdapter
	threshold int64
	log       zerolog.Logger
}

// NewFactory builds every known adapter from the credential bundle.
func NewFactory(cfg config.GatewaysConfig, sigSvc ports.SignatureService, httpClient HTTPClient, log zerolog.Logger) *Factory {
	return &Factory{
		wayl:      NewWaylAdapter(cfg.Wayl, sigSvc, httpClient, log),
		zain:      NewZainDirectAdapter(cfg.ZainDirect, sigSvc, httpClient, log),
		threshold: cfg.LargeAmountThreshold,
		log:       log,
	}
}

// ByAmount selects the adapter by transaction amount. Amounts strictly above
// the threshold route to the direct-debit provider; the boundary value itself
// stays on the default hosted-checkout provider. Hosted flows carry
// provider-imposed ceilings that make them unsuitable for large amounts.
func (f *Factory) ByAmount(amount int64) ports.GatewayAdapter {
	if amount > f.threshold {
		return f.zain
	}
	return f.wayl
}

// ByName resolves an adapter by its exact, case-sensitive name. Unknown names
// fall back to the default adapter so webhook delivery stays resilient to
// naming drift; the mismatch is logged for visibility.
func (f *Factory) ByName(name string) ports.GatewayAdapter {
	switch name {
	case f.wayl.Name():
		return f.wayl
	case f.zain.Name():
		return f.zain
	default:
		f.log.Warn().Str("provider", name).Msg("unknown provider name, falling back to default adapter")
		return f.wayl
	}
}

// Adapters returns the closed set of known adapters.
func (f *Factory) Adapters() []ports.GatewayAdapter {
	return []ports.GatewayAdapter{f.wayl, f.zain}
}
