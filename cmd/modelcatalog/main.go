package main

import (
	"context"
	"modelcatalog/cmd/modelcatalog/commands"
	"modelcatalog/pkg/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
