package main

import (
	"os"

	"cosmossdk.io/log"
	svrcmd "github.com/cosmos/cosmos-sdk/server/cmd"
	"github.com/openalpha/options-vault/app"
	"github.com/openalpha/options-vault/cmd/ovaultd/cmd"
)

func main() {
	if err := svrcmd.Execute(cmd.NewRootCmd(), "", app.DefaultNodeHome); err != nil {
		log.NewLogger(os.Stderr).Error("ovaultd exited", "err", err)
		os.Exit(1)
	}
}
