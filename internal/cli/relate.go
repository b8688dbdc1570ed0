package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "relate [note]",
		Short: "Record a relationship history entry",
		Long: "Append a history entry to a relationship (e.g. \"Alice-Bob\") and, when " +
			"anchored to a message, advance the relationship's last-update cursor. " +
			"Entries without --message are kept through any rewind.",
		Run: runRelate,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.Flags().StringP("key", "k", "", "Relationship key (required)")
	cmd.Flags().IntP("message", "m", -1, "Message index the entry is anchored to")

	cmd.MarkFlagRequired("conv")
	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runRelate(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")
	key, _ := cmd.Flags().GetString("key")
	message, _ := cmd.Flags().GetInt("message")

	var note string
	if len(args) > 0 {
		note = args[0]
	}
	if note == "" && message < 0 {
		exitErr("relate", fmt.Errorf("a note or --message is required"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	doc, err := s.Document(ctx, conv)
	if err != nil {
		exitErr("load document", err)
	}

	r := doc.Relationship(key)
	entry := model.HistoryEntry{Note: note}
	if message >= 0 {
		anchor := message
		entry.MessageID = &anchor
		cursor := message
		r.LastUpdatedMessageID = &cursor
		if message > doc.LastProcessed {
			doc.LastProcessed = message
		}
	}
	r.History = append(r.History, entry)

	if err := s.SaveDocument(ctx, conv, doc); err != nil {
		exitErr("save document", err)
	}

	b, _ := json.Marshal(map[string]*model.Relationship{key: r})
	fmt.Println(string(b))
}
