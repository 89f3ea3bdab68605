package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/palette/internal/source"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage stored conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a conversation",
	Long: `Create a conversation in the database.

  palette conversations new --slug bugfix-123 --cwd ~/src/proj`,
	Args: cobra.NoArgs,
	RunE: runConversationsNew,
}

var conversationsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import conversations from a YAML file",
	Long: `Import copies conversations from a YAML file into the database.
Conversations whose id already exists are skipped.

  conversations:
    - id: c1
      slug: bugfix-123
      cwd: /home/u/proj`,
	Args: cobra.ExactArgs(1),
	RunE: runConversationsImport,
}

var conversationsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write stored conversations to a YAML file",
	Long: `Export writes the conversation list, most recent first, in the format
import and conversations.file read.`,
	Args: cobra.ExactArgs(1),
	RunE: runConversationsExport,
}

func init() {
	conversationsNewCmd.Flags().String("slug", "", "Conversation label")
	conversationsNewCmd.Flags().String("cwd", "", "Working directory (defaults to the current directory)")

	conversationsCmd.AddCommand(
		conversationsListCmd,
		conversationsShowCmd,
		conversationsNewCmd,
		conversationsImportCmd,
		conversationsExportCmd,
	)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsList(cmd *cobra.Command, _ []string) error {
	st, err := openSyncedStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	convs, err := st.Conversations(cmd.Context())
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(convs) == 0 {
		fmt.Fprintln(out, "No conversations.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tCWD\tUPDATED")
	for _, c := range convs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Slug, c.Cwd, formatUpdated(c.UpdatedAt))
	}
	return tw.Flush()
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	st, err := openSyncedStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.GetConversation(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:       %s\n", c.ID)
	fmt.Fprintf(out, "Slug:     %s\n", c.Slug)
	fmt.Fprintf(out, "Cwd:      %s\n", c.Cwd)
	fmt.Fprintf(out, "Updated:  %s\n", formatUpdated(c.UpdatedAt))
	return nil
}

func runConversationsNew(cmd *cobra.Command, _ []string) error {
	slug, _ := cmd.Flags().GetString("slug")
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		cwd = wd
	}
	if slug == "" {
		slug = newSlug(cwd, time.Now())
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.CreateConversation(cmd.Context(), slug, cwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", c.Label(), c.ID)
	return nil
}

func runConversationsImport(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := importFile(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new conversation(s) from %s\n", n, args[0])
	return nil
}

func runConversationsExport(cmd *cobra.Command, args []string) error {
	st, err := openSyncedStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	convs, err := st.ListConversations(cmd.Context(), 0)
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	if err := source.WriteFile(args[0], convs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d conversation(s) to %s\n", len(convs), args[0])
	return nil
}

func formatUpdated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
