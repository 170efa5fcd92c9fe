// Command dxdec decompiles Direct3D 9 shader program dumps to HLSL.
//
// Usage:
//
//	dxdec decompile [flags] <program>...
//	dxdec convert <in> <out>
//	dxdec disasm <program>
//	dxdec version
//
// Examples:
//
//	dxdec decompile water.ps.yaml               # HLSL to stdout
//	dxdec decompile -o out -j 8 dumps/*.msgpack  # batch into out/
//	dxdec convert water.ps.yaml water.ps.msgpack
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"github.com/gogpu/dxdec/internal/logging"
)

const dxdecVersion = "0.1.0-dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	color          string
	logLevel       string
	maxDiagnostics int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "dxdec",
		Short:         "Direct3D 9 shader decompiler",
		Long:          "dxdec turns decoded Direct3D 9 shader programs (vs_1_1 to ps_3_0) into HLSL source.",
		Version:       dxdecVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.color, "color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (trace|debug|info|warn|error)")
	root.PersistentFlags().IntVar(&g.maxDiagnostics, "max-diagnostics", 100, "maximum number of diagnostics kept per program")

	root.AddCommand(newDecompileCmd(g))
	root.AddCommand(newConvertCmd())
	root.AddCommand(newDisasmCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

// logger builds the logger selected by --log-level.
func (g *globalFlags) logger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), level), nil
}

// useColor resolves --color against the stream the output goes to.
func (g *globalFlags) useColor(out any) (bool, error) {
	switch g.color {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := out.(*os.File)
		return ok && isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color %q: want auto, on or off", g.color)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
