package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-sendmail/cmd/sendmail-deliver/cmd"
	"github.com/zostay/go-sendmail/delivery/sendmail"
)

func main() {
	err := cmd.Execute()

	// let the caller's queue retry, the same as the MTA asked of us
	var exitErr *sendmail.ExitError
	if errors.As(err, &exitErr) && exitErr.Temporary() {
		os.Exit(sendmail.ExitTempFail)
	}

	cobra.CheckErr(err)
}
