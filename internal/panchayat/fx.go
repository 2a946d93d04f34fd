package panchayat

import (
	"github.com/smallbiznis/agrimarket/internal/panchayat/repository"
	"github.com/smallbiznis/agrimarket/internal/panchayat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("panchayat.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
