package app

import (
	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/omniwire/chat-sync/internal/chatstate"
	"github.com/omniwire/chat-sync/internal/config"
	"github.com/omniwire/chat-sync/internal/repo/historyapi"
	"github.com/omniwire/chat-sync/internal/server"
	"github.com/omniwire/chat-sync/internal/usecase"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			server.NewHandler,

			usecase.NewInboxUsecase,

			chatstate.NewSession,

			historyapi.NewClient,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}
