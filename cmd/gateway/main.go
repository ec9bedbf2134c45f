package main

import (
	"kampalabites/apps/gateway"
	"kampalabites/cmd/gateway/router"
	"kampalabites/internal"
	"kampalabites/pkg"

	"go.uber.org/fx"
)

func main() {
	fx.New(
		gateway.Module,
		router.Module,
		pkg.Module,
		internal.Module,
	).Run()
}
