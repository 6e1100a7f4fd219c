//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"tradepersona/internal/config"
)

func buildAppWithWire(ctx context.Context, cfg *config.Config) (*App, error) {
	wire.Build(providerSet)
	return nil, nil
}
