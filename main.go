package main

import (
	"fmt"
	"os"

	"fjacquet/stmt-insight/cmd/anomalies"
	"fjacquet/stmt-insight/cmd/extract"
	"fjacquet/stmt-insight/cmd/recurring"
	"fjacquet/stmt-insight/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(anomalies.Cmd)
	root.Cmd.AddCommand(recurring.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
