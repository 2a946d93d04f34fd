package bulkpurchase

import (
	"github.com/smallbiznis/agrimarket/internal/bulkpurchase/repository"
	"github.com/smallbiznis/agrimarket/internal/bulkpurchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bulkpurchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
