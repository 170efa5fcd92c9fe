package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gogpu/dxdec/shader"
)

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <program>",
		Short: "Print the assembly listing of a program dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := shader.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), prog.Listing())
			return err
		},
	}
}
