package observer_test

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
)

func contextWithLogger(logger *slog.Logger) context.Context {
	return ctxlog.WithLogger(context.Background(), logger)
}
