package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember [summary]",
		Short: "Record a memory for a conversation",
		Long: "Record a summarized memory anchored to one or more message indices. " +
			"Characters listed with --characters learn the memory (it is added to their known events).",
		Run: runRemember,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.Flags().StringP("messages", "m", "", "Comma-separated message indices the memory covers (required)")
	cmd.Flags().String("characters", "", "Comma-separated character names that know this memory")

	cmd.MarkFlagRequired("conv")
	cmd.MarkFlagRequired("messages")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")
	messagesStr, _ := cmd.Flags().GetString("messages")
	charactersStr, _ := cmd.Flags().GetString("characters")

	summary := strings.TrimSpace(strings.Join(args, " "))
	if summary == "" {
		exitErr("remember", fmt.Errorf("summary is required"))
	}

	messageIDs, err := parseInts(messagesStr)
	if err != nil {
		exitErr("remember", err)
	}
	if len(messageIDs) == 0 {
		exitErr("remember", fmt.Errorf("at least one message index is required"))
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

	mem := model.Memory{
		ID:         s.NewID(),
		Summary:    summary,
		MessageIDs: messageIDs,
	}
	doc.Memories = append(doc.Memories, mem)

	for _, name := range splitList(charactersStr) {
		c := doc.Character(name)
		c.KnownEvents = append(c.KnownEvents, mem.ID)
	}

	// Advance the extraction cursor past the covered span
	for _, id := range messageIDs {
		if id > doc.LastProcessed {
			doc.LastProcessed = id
		}
	}

	if err := s.SaveDocument(ctx, conv, doc); err != nil {
		exitErr("save document", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}
