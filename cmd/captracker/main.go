package main

import (
	"captracker/cmd/captracker/commands"
	"captracker/lib/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	commands.ExecuteContext(ctx)
}
