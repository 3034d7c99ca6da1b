package payment

import "go.uber.org/fx"

var Module = fx.Module("providers.payment",
	fx.Provide(
		fx.Annotate(NewHostedGateway, fx.As(new(Gateway))),
	),
)
