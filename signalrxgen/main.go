package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	source string
	out    string
)

var rootCmd = &cobra.Command{
	Use:   "signalrxgen",
	Short: "Generate observable receiver bindings from annotated interfaces",
	Long: `signalrxgen reads a Go source file, finds the interfaces annotated with
//signalrx:receiver and generates for each of them a struct embedding
signalrx.Receiver, a forwarding method per interface method, an arguments
struct per method and a typed Observe helper per method.

It is meant to be run by go generate, which sets GOFILE to the file
containing the directive:

	//go:generate go run github.com/philippseith/signalrx/signalrxgen`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if source == "" {
			source = os.Getenv("GOFILE")
		}
		if source == "" {
			return fmt.Errorf("no source file. Pass --source or run through go generate")
		}
		if out == "" {
			out = strings.TrimSuffix(source, filepath.Ext(source)) + "_gen.go"
		}
		return run(source, out)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&source, "source", "s", "", "source file with annotated interfaces (default $GOFILE)")
	rootCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <source>_gen.go)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
