package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/board"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Card management commands",
	}

	cmd.AddCommand(newItemCreateCmd())
	cmd.AddCommand(newItemListCmd())
	cmd.AddCommand(newItemShowCmd())
	cmd.AddCommand(newItemUpdateCmd())
	cmd.AddCommand(newItemMoveCmd())
	cmd.AddCommand(newItemDeleteCmd())
	return cmd
}

func newItemCreateCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		variant     string
		description string
		tags        []string
		scheduled   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new card",
		Long:  "Creates a new card in the backlog of the chosen collection with an auto-generated ID.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemCreate(cmd, configPath, title, variant, description, tags, scheduled)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVar(&title, "title", "", "card title (required)")
	cmd.Flags().StringVar(&variant, "variant", models.VariantTopic, "collection (TOPIC or POST)")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&scheduled, "scheduled", "", "scheduled date (YYYY-MM-DD, posts only)")
	cmd.MarkFlagRequired("title")
	return cmd
}

func runItemCreate(cmd *cobra.Command, configPath, title, variant, description string, tags []string, scheduled string) error {
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

	item, err := b.CreateItem(title)
	if err != nil {
		return err
	}

	fields := store.UpdateFields{}
	dirty := false
	if description != "" {
		fields.Description = &description
		dirty = true
	}
	if len(tags) > 0 {
		fields.Tags = &tags
		dirty = true
	}
	if scheduled != "" {
		date, err := time.Parse("2006-01-02", scheduled)
		if err != nil {
			return fmt.Errorf("parse --scheduled: %w", err)
		}
		fields.ScheduledDate = &date
		dirty = true
	}
	if dirty {
		if item, err = b.UpdateItem(item.ID, fields); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created card %s\n", item.ID)
	fmt.Fprintf(out, "Collection: %s\n", item.Variant)
	fmt.Fprintf(out, "Lane: %s\n", item.Status)
	return nil
}

func newItemListCmd() *cobra.Command {
	var (
		configPath string
		variant    string
		status     string
		due        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Long:  "Lists cards in one collection, in board order, optionally filtered by lane. With --due, lists only scheduled cards sorted by date.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemList(cmd, configPath, variant, status, due)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVar(&variant, "variant", models.VariantTopic, "collection (TOPIC or POST)")
	cmd.Flags().StringVar(&status, "status", "", "filter by lane")
	cmd.Flags().BoolVar(&due, "due", false, "only scheduled cards, soonest first")
	return cmd
}

func runItemList(cmd *cobra.Command, configPath, variant, status string, due bool) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if status != "" && !models.ValidStatus(status) {
		return fmt.Errorf("unknown lane %q", status)
	}

	b, err := board.Open(s, board.Opts{Variant: variant})
	if err != nil {
		return err
	}
	defer b.Close()

	var items []models.Item
	if status != "" {
		items = b.Lane(status)
	} else {
		for _, lane := range models.Statuses {
			items = append(items, b.Lane(lane)...)
		}
	}
	if due {
		scheduled := items[:0]
		for _, it := range items {
			if it.ScheduledDate != nil {
				scheduled = append(scheduled, it)
			}
		}
		items = scheduled
		sort.Slice(items, func(i, j int) bool {
			return items[i].ScheduledDate.Before(*items[j].ScheduledDate)
		})
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No cards found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tLANE\tSCHEDULED\tTAGS\tCOMMENTS")
	for _, it := range items {
		tags := "-"
		if len(it.Tags) > 0 {
			tags = strings.Join(it.Tags, ",")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			it.ID, truncate(it.Title, 40), it.Status, formatDate(it.ScheduledDate), tags, len(it.Comments))
	}
	w.Flush()
	return nil
}

func newItemShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show card details",
		Long:  "Displays full details of a card including description, tags, schedule, and comments.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	return cmd
}

func runItemShow(cmd *cobra.Command, configPath, id string) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	item, err := s.Get(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", item.ID)
	fmt.Fprintf(out, "Title:       %s\n", item.Title)
	fmt.Fprintf(out, "Collection:  %s\n", item.Variant)
	fmt.Fprintf(out, "Lane:        %s\n", item.Status)
	fmt.Fprintf(out, "Scheduled:   %s\n", formatDate(item.ScheduledDate))
	if len(item.Tags) > 0 {
		fmt.Fprintf(out, "Tags:        %s\n", strings.Join(item.Tags, ", "))
	}
	fmt.Fprintf(out, "Created:     %s\n", item.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Updated:     %s\n", item.UpdatedAt.Format(time.RFC3339))
	if item.Description != "" {
		fmt.Fprintf(out, "\nDescription:\n%s\n", item.Description)
	}
	if len(item.Comments) > 0 {
		fmt.Fprintf(out, "\nComments (%d):\n", len(item.Comments))
		for _, cm := range item.Comments {
			fmt.Fprintf(out, "  [%s] %s (%s): %s\n",
				cm.ID, cm.UserName, cm.CreatedAt.Format("2006-01-02 15:04"), cm.Text)
		}
	}
	return nil
}

func newItemUpdateCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		description string
		tags        []string
		scheduled   string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update card fields",
		Long:  "Updates the given fields of a card. Omitted fields are left unchanged; lane changes go through 'item move'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemUpdate(cmd, configPath, args[0], title, description, tags, scheduled, cmd.Flags().Changed("description"))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replacement tags (repeatable)")
	cmd.Flags().StringVar(&scheduled, "scheduled", "", "scheduled date (YYYY-MM-DD)")
	return cmd
}

func runItemUpdate(cmd *cobra.Command, configPath, id, title, description string, tags []string, scheduled string, descriptionSet bool) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	fields := store.UpdateFields{}
	if title != "" {
		fields.Title = &title
	}
	if descriptionSet {
		fields.Description = &description
	}
	if len(tags) > 0 {
		fields.Tags = &tags
	}
	if scheduled != "" {
		date, err := time.Parse("2006-01-02", scheduled)
		if err != nil {
			return fmt.Errorf("parse --scheduled: %w", err)
		}
		fields.ScheduledDate = &date
	}

	item, err := s.Update(id, fields)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated card %s\n", item.ID)
	return nil
}

func newItemMoveCmd() *cobra.Command {
	var (
		configPath string
		before     string
	)

	cmd := &cobra.Command{
		Use:   "move <id> <lane>",
		Short: "Move a card to another lane",
		Long: `Moves a card onto the target lane, appending at the end. With --before,
the card lands directly above the named card in that lane.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemMove(cmd, configPath, args[0], args[1], before)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVar(&before, "before", "", "card ID to insert above")
	return cmd
}

func runItemMove(cmd *cobra.Command, configPath, id, lane, beforeID string) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if !models.ValidStatus(lane) {
		return fmt.Errorf("unknown lane %q", lane)
	}

	item, err := s.Get(id)
	if err != nil {
		return err
	}

	b, err := board.Open(s, board.Opts{Variant: item.Variant})
	if err != nil {
		return err
	}
	defer b.Close()

	b.DragStart(item.ID)
	b.DragEnterLane(lane)
	if beforeID != "" {
		target, err := s.Get(beforeID)
		if err != nil {
			b.DragCancel()
			return err
		}
		if err := b.DropOnItem(*target); err != nil {
			return err
		}
	} else if err := b.DropOnLane(lane); err != nil {
		return err
	}

	moved, err := s.Get(item.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved card %s to %s\n", moved.ID, moved.Status)
	return nil
}

func newItemDeleteCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a card",
		Long:  "Permanently deletes a card and its comments. Asks for confirmation on a terminal; non-interactive sessions must pass --yes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemDelete(cmd, configPath, args[0], yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runItemDelete(cmd *cobra.Command, configPath, id string, skipConfirm bool) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	item, err := s.Get(id)
	if err != nil {
		return err
	}

	if !skipConfirm {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("stdin is not a terminal; pass --yes to delete %s", id)
		}
		if !confirmDelete(cmd, item) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := s.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted card %s\n", id)
	return nil
}

func confirmDelete(cmd *cobra.Command, item *models.Item) bool {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Delete %q (%s) and its %d comments? This cannot be undone.\n", item.Title, item.ID, len(item.Comments))
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
