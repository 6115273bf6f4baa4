package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/board"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Board-level commands",
	}

	cmd.AddCommand(newBoardShowCmd())
	cmd.AddCommand(newBoardRenumberCmd())
	return cmd
}

func newBoardShowCmd() *cobra.Command {
	var (
		configPath string
		variant    string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the board lane by lane",
		Long:  "Prints every lane of one collection in board order, with per-lane counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoardShow(cmd, configPath, variant)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVar(&variant, "variant", models.VariantTopic, "collection (TOPIC or POST)")
	return cmd
}

func runBoardShow(cmd *cobra.Command, configPath, variant string) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := board.Open(s, board.Opts{Variant: variant})
	if err != nil {
		return err
	}
	defer b.Close()

	out := cmd.OutOrStdout()
	counts := b.Counts()
	fmt.Fprintf(out, "%s board\n\n", variant)

	for _, lane := range models.Statuses {
		fmt.Fprintf(out, "%s (%d)\n", lane, counts[lane])
		items := b.Lane(lane)
		if len(items) == 0 {
			fmt.Fprintln(out, "  (empty)")
			continue
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, it := range items {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", it.ID, truncate(it.Title, 50), formatDate(it.ScheduledDate))
		}
		w.Flush()
	}
	return nil
}

func newBoardRenumberCmd() *cobra.Command {
	var (
		configPath string
		variant    string
	)

	cmd := &cobra.Command{
		Use:   "renumber <lane>",
		Short: "Reassign evenly spaced order keys to a lane",
		Long: `Rewrites one lane's order keys as multiples of the configured gap,
restoring headroom for midpoint insertion after many drops in the same
spot. Card order is preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoardRenumber(cmd, configPath, variant, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVar(&variant, "variant", models.VariantTopic, "collection (TOPIC or POST)")
	return cmd
}

func runBoardRenumber(cmd *cobra.Command, configPath, variant, lane string) error {
	cfg, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := board.Open(s, board.Opts{Variant: variant, Gap: cfg.Ordering.Gap})
	if err != nil {
		return err
	}
	defer b.Close()

	n, err := b.RenumberLane(lane)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renumbered %d cards in %s/%s\n", n, variant, lane)
	return nil
}
