package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/board"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
)

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Comment management commands",
	}

	cmd.AddCommand(newCommentAddCmd())
	cmd.AddCommand(newCommentEditCmd())
	cmd.AddCommand(newCommentDeleteCmd())
	cmd.AddCommand(newCommentListCmd())
	return cmd
}

// openBoardForItem resolves an item and opens its collection's board.
// Callers must close the returned board.
func openBoardForItem(configPath, itemID string) (*board.Board, func(), error) {
	_, s, err := openStore(configPath)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.Get(itemID)
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	b, err := board.Open(s, board.Opts{Variant: item.Variant})
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return b, func() {
		b.Close()
		s.Close()
	}, nil
}

func newCommentAddCmd() *cobra.Command {
	var (
		configPath string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "add <item-id> <text>",
		Short: "Add a comment to a card",
		Long:  "Appends a comment to a card, authored as the admin or client identity from the config.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentAdd(cmd, configPath, args[0], args[1], role)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVar(&role, "role", models.RoleClient, "author role (ADMIN or CLIENT)")
	return cmd
}

func runCommentAdd(cmd *cobra.Command, configPath, itemID, text, role string) error {
	cfg, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	item, err := s.Get(itemID)
	if err != nil {
		return err
	}

	b, err := board.Open(s, board.Opts{Variant: item.Variant})
	if err != nil {
		return err
	}
	defer b.Close()

	comment, err := b.AddComment(itemID, text, cfg.UserFor(role))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added comment %s to %s\n", comment.ID, itemID)
	fmt.Fprintf(out, "Author: %s\n", comment.UserName)
	return nil
}

func newCommentEditCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "edit <item-id> <comment-id> <text>",
		Short: "Edit a comment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentEdit(cmd, configPath, args[0], args[1], args[2])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	return cmd
}

func runCommentEdit(cmd *cobra.Command, configPath, itemID, commentID, text string) error {
	b, closeAll, err := openBoardForItem(configPath, itemID)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := b.EditComment(itemID, commentID, text); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated comment %s on %s\n", commentID, itemID)
	return nil
}

func newCommentDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <item-id> <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentDelete(cmd, configPath, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	return cmd
}

func runCommentDelete(cmd *cobra.Command, configPath, itemID, commentID string) error {
	b, closeAll, err := openBoardForItem(configPath, itemID)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := b.DeleteComment(itemID, commentID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment %s from %s\n", commentID, itemID)
	return nil
}

func newCommentListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <item-id>",
		Short: "List a card's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentList(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	return cmd
}

func runCommentList(cmd *cobra.Command, configPath, itemID string) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	item, err := s.Get(itemID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(item.Comments) == 0 {
		fmt.Fprintln(out, "No comments.")
		return nil
	}
	for _, cm := range item.Comments {
		fmt.Fprintf(out, "[%s] %s (%s)\n%s\n\n",
			cm.ID, cm.UserName, cm.CreatedAt.Format("2006-01-02 15:04"), cm.Text)
	}
	return nil
}
