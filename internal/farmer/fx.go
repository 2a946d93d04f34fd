package farmer

import (
	"github.com/smallbiznis/agrimarket/internal/farmer/repository"
	"github.com/smallbiznis/agrimarket/internal/farmer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("farmer.service",
	fx.Provide(newPayoutSealer),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
