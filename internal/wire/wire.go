//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"cookinghub/internal/account"
	"cookinghub/internal/ledger"
	"cookinghub/internal/media"
	"cookinghub/internal/query"
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideBackend,
		ProvideBlobs,
		ProvideAccountStore,
		ProvideInteractionStore,
		ProvideQueryBlobs,
		account.NewDirectory,
		ledger.NewLedger,
		query.NewService,
		media.NewHTTPServer,
		wire.Bind(new(query.Accounts), new(*account.Directory)),
		wire.Bind(new(query.Interactions), new(*ledger.Ledger)),
		wire.Bind(new(media.FileOpener), new(*query.Service)),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
