// Command inspect prints rooms and messages straight from the badger store.
// It opens the store read-only, so it can run next to a live server.
package main

import (
	"chat-hub/domain"
	"chat-hub/internal"
	"chat-hub/repositories"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	dbPath string
	limit  int
	prefix string
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		color.Red.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inspect",
		Short:         "Inspect the chat-hub badger store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", os.Getenv("BADGER_FILEPATH"), "Path to the badger directory (defaults to BADGER_FILEPATH)")
	root.PersistentFlags().IntVar(&limit, "limit", 50, "Maximum number of rows")

	keys := &cobra.Command{
		Use:   "keys",
		Short: "Dump raw entries under a key prefix",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, db *badger.DB, _ *slog.Logger) error {
			rows, err := internal.Scan(db, prefix, limit, internal.DefaultMapper)
			if err != nil {
				return err
			}
			header(cmd.OutOrStdout(), fmt.Sprintf("%d entries under %q", len(rows), prefix))
			render(cmd.OutOrStdout(), []string{"Key", "Type", "Timestamp", "Target", "Author", "Detail"}, rowsOf(rows))
			return nil
		}),
	}
	keys.Flags().StringVar(&prefix, "prefix", "", "Key prefix to scan (msg:, room:)")

	root.AddCommand(
		&cobra.Command{
			Use:   "rooms",
			Short: "List the rooms of the directory",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, _ []string, db *badger.DB, log *slog.Logger) error {
				repository, err := repositories.NewRoomRepository(db, log)
				if err != nil {
					return err
				}
				rooms, err := repository.ListRooms(cmd.Context())
				if err != nil {
					return err
				}
				header(cmd.OutOrStdout(), fmt.Sprintf("%d rooms", len(rooms)))
				data := make([][]string, 0, len(rooms))
				for _, room := range rooms {
					data = append(data, []string{room.ID, room.Name})
				}
				render(cmd.OutOrStdout(), []string{"ID", "Name"}, data)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "history <roomID>",
			Short: "Print the latest messages of a room",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, db *badger.DB, log *slog.Logger) error {
				messages, err := repositories.NewMessageRepository(db, log).
					FindRoomHistory(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				header(cmd.OutOrStdout(), fmt.Sprintf("room %s: %d messages", args[0], len(messages)))
				render(cmd.OutOrStdout(), messageHeader, messageRows(messages))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "private <a> <b>",
			Short: "Print the latest messages between two users",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(cmd *cobra.Command, args []string, db *badger.DB, log *slog.Logger) error {
				key, err := domain.DeriveConversationKey(args[0], args[1])
				if err != nil {
					return err
				}
				messages, err := repositories.NewMessageRepository(db, log).
					FindPrivateHistory(cmd.Context(), key, limit)
				if err != nil {
					return err
				}
				header(cmd.OutOrStdout(), fmt.Sprintf("%s <-> %s: %d messages", args[0], args[1], len(messages)))
				render(cmd.OutOrStdout(), messageHeader, messageRows(messages))
				return nil
			}),
		},
		keys,
	)
	return root
}

type storeFunc func(cmd *cobra.Command, args []string, db *badger.DB, log *slog.Logger) error

// withStore opens the store read-only around fn.
// BypassLockGuard lets it open while the server holds the lock.
func withStore(fn storeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("no store: pass --db or set BADGER_FILEPATH")
		}
		db, err := badger.Open(badger.DefaultOptions(dbPath).
			WithReadOnly(true).
			WithBypassLockGuard(true).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		return fn(cmd, args, db, logs.GetLoggerFromLevel(slog.LevelError))
	}
}

var messageHeader = []string{"Time", "Author", "Lang", "Text"}

func messageRows(messages []domain.Message) [][]string {
	data := make([][]string, 0, len(messages))
	for _, msg := range messages {
		data = append(data, []string{msg.Timestamp.Format("2006-01-02 15:04:05"), msg.User, msg.Lang, msg.Text})
	}
	return data
}

func rowsOf(rows []internal.InspectRow) [][]string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{row.Key, row.Type, row.Timestamp, row.Target, row.Author, row.Detail})
	}
	return data
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w, color.New(color.BgBlack, color.FgGreen).Render(" "+title+" "))
}

func render(w io.Writer, head []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(head)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(data)
	table.Render()
}
