package main

import (
	"go.uber.org/fx"

	"github.com/agricoventas/platform/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
