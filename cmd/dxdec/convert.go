package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/dxdec/shader"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Re-encode a program dump between YAML and MessagePack",
		Long:  "Convert decodes <in> and encodes it to <out>. Both formats are picked from the file extensions.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convertFile(args[0], args[1])
		},
	}
}

func convertFile(in, out string) error {
	format, err := shader.FormatFromPath(out)
	if err != nil {
		return err
	}
	prog, err := shader.ReadFile(in)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := shader.Encode(&buf, prog, format); err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}
