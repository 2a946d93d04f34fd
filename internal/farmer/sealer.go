package farmer

import (
	"strings"

	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/smallbiznis/agrimarket/pkg/sealer"
	"go.uber.org/zap"
)

// newPayoutSealer returns nil when PAYOUT_ACCOUNT_KEY is unset; registration
// then rejects payout accounts instead of storing them in clear text.
func newPayoutSealer(cfg config.Config, log *zap.Logger) (*sealer.Sealer, error) {
	if strings.TrimSpace(cfg.PayoutAccountKey) == "" {
		log.Warn("PAYOUT_ACCOUNT_KEY not set, payout accounts cannot be stored")
		return nil, nil
	}
	return sealer.New(cfg.PayoutAccountKey)
}
