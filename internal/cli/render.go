package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	renderOwner string
	renderOut   string
)

var renderCmd = &cobra.Command{
	Use:   "render <claim-id>",
	Short: "Render one claim packet to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := stderrLogger(cfg)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if cfg.Server.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Server.RequestTimeout)
			defer cancel()
		}

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		packet, err := a.generator.Generate(ctx, args[0], renderOwner)
		if err != nil {
			return fmt.Errorf("render %s: %w", args[0], err)
		}

		out := renderOut
		if out == "" {
			out = packet.Filename
		}
		if err := os.WriteFile(out, packet.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "wrote %s (%d pages, %d bytes)\n", out, packet.Report.Pages, len(packet.Data))
		for _, e := range packet.Report.Skipped() {
			fmt.Fprintf(w, "  skipped evidence %s (%s): %v\n", e.EvidenceID, e.Path, e.Err)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOwner, "owner", "", "user id that owns the claim (required)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default: claim-packet-<id>.pdf)")
	_ = renderCmd.MarkFlagRequired("owner")

	rootCmd.AddCommand(renderCmd)
}
