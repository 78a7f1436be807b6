package http_jsoning_app

import (
	"github.com/google/wire"
)

var AppSet = wire.NewSet(
	ProvideMetrics,
	NewResourceController,
	NewServer,
)

func ProvideMetrics() *Metrics {
	return NewMetrics(nil)
}
