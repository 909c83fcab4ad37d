package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newScanCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "scan <watchlist>",
		Short: "Scan a watchlist and print the signal table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			rep, err := a.scanner.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep.Table)
			}
			res := rep.Result
			fmt.Fprintf(out, "%s: %d symbols, %d full, %d partial (%d timed out) in %s\n\n",
				rep.Watchlist, len(res.Records), res.Full, res.Partial, res.TimedOut, res.Duration.Round(time.Millisecond))
			if err := rep.Table.RenderText(out); err != nil {
				return err
			}
			for _, rec := range res.Failures() {
				fmt.Fprintf(out, "\n! %s: %v", rec.Symbol, rec.Failure)
			}
			if len(res.Failures()) > 0 {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}
