package main

import (
	"chat-relay/domain"
	"chat-relay/infrastructure/storage"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

const maxContentWidth = 60

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	room := flag.String("room", "", "Room to list, every message when empty")
	limit := flag.Int("limit", domain.MaxLimit, "Page size when a room is given")
	offset := flag.Int("offset", 0, "Page offset when a room is given")
	noColor := flag.Bool("no-color", false, "Disable colors")
	flag.Parse()

	if *noColor {
		color.Disable()
	}
	if err := run(os.Stdout, *dbPath, *room, *limit, *offset); err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("inspect: %v", err))
		os.Exit(1)
	}
}

func run(out io.Writer, dbPath, room string, limit, offset int) error {
	db, err := badger.Open(badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil))
	if err != nil {
		return fmt.Errorf("error while opening Badger: %w", err)
	}
	defer db.Close()

	var messages []domain.Message
	total := 0
	if room != "" {
		repository := storage.NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelError))
		messages, total, err = repository.FindWithPagination(context.Background(), room, limit, offset)
	} else {
		messages, err = scanMessages(db)
		total = len(messages)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, color.Cyan.Sprintf("%d message(s) in %s", total, scope(room)))
	render(out, messages)
	return nil
}

// scanMessages reads every record, skipping room index entries.
func scanMessages(db *badger.DB) ([]domain.Message, error) {
	var messages []domain.Message
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if !storage.IsMessageKey(item.Key()) {
				continue
			}
			err := item.Value(func(v []byte) error {
				message, err := storage.DecodeMessage(v)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error decoding key %s: %v\n", item.Key(), err)
					return nil
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

func render(out io.Writer, messages []domain.Message) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Time", "Room", "User", "Content", "Processed", "Time (ms)"})
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

	for _, message := range messages {
		status, elapsed := processing(message)
		table.Append([]string{
			shortID(message.ID),
			message.Timestamp.Format("2006-01-02 15:04:05"),
			message.Room,
			message.UserID,
			truncate(message.Content, maxContentWidth),
			status,
			elapsed,
		})
	}
	table.Render()
}

// processing summarizes the metadata: a draft never got any.
func processing(message domain.Message) (string, string) {
	if message.Metadata == nil || message.Metadata.LambdaProcessing == nil {
		return color.Yellow.Sprint("draft"), "-"
	}
	outcome := message.Metadata.LambdaProcessing
	if !outcome.Success {
		return color.Red.Sprint("degraded"), "-"
	}
	elapsed := "-"
	if outcome.ProcessingTime != nil {
		elapsed = strconv.FormatFloat(*outcome.ProcessingTime, 'f', 2, 64)
	}
	if outcome.Sanitized != nil && *outcome.Sanitized {
		return color.Magenta.Sprint("sanitized"), elapsed
	}
	return color.Green.Sprint("ok"), elapsed
}

func scope(room string) string {
	if room == "" {
		return "all rooms"
	}
	return "room " + room
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
