package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"Niveshak/internal/watchlist"
)

func newListsCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "List the configured watchlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := openLists(flags)
			if err != nil {
				return err
			}
			names, err := lists.Names()
			if err != nil {
				return err
			}
			for _, n := range names {
				syms, err := lists.List(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d symbols\n", n, len(syms))
			}
			return nil
		},
	}
	cmd.AddCommand(newImportCommand(flags))
	return cmd
}

func newImportCommand(flags *globalFlags) *cobra.Command {
	var exclude string
	cmd := &cobra.Command{
		Use:   "import <name> <index.csv>",
		Short: "Create a watchlist from an exchange index constituents CSV",
		Long: `Reads the Symbol column of an index constituents CSV and writes it as a
watchlist. With --exclude, symbols of a second index are removed, e.g. to derive
NIFTY Next 50 from NIFTY 100 minus NIFTY 50.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := openLists(flags)
			if err != nil {
				return err
			}
			symbols, err := readIndexFile(args[1])
			if err != nil {
				return err
			}
			if exclude != "" {
				drop, err := readIndexFile(exclude)
				if err != nil {
					return err
				}
				symbols = watchlist.Subtract(symbols, drop)
			}
			if err := lists.Write(args[0], symbols); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d symbols to %s\n", len(symbols), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "index CSV whose symbols are left out")
	return cmd
}

func openLists(flags *globalFlags) (*watchlist.Dir, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return watchlist.NewDir(cfg.Watchlists.Dir)
}

func readIndexFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return watchlist.ReadIndexCSV(f)
}
