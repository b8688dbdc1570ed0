package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/log"
	"github.com/lorekeep/lorekeep/internal/reconcile"
	"github.com/lorekeep/lorekeep/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a conversation's memory document with its transcript",
		Long: "Remove or clamp memories, character events and relationship cursors that " +
			"reference messages beyond the current transcript length. Safe to run " +
			"repeatedly; a clean document is left untouched.",
		Run: runReconcile,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.MarkFlagRequired("conv")

	RootCmd.AddCommand(cmd)
}

type reconcileResult struct {
	Conversation     string `json:"conversation"`
	TranscriptLength int    `json:"transcript_length"`
	RemovedMessages  int    `json:"removed_messages,omitempty"`
	reconcile.Report
	Persisted bool `json:"persisted"`
}

func runReconcile(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res := reconcileConversation(cmd, s, conv)
	b, _ := json.Marshal(res)
	fmt.Println(string(b))
	if !res.Persisted {
		os.Exit(1)
	}
}

// reconcileConversation loads the document, runs the reconciliation pass
// against the current transcript length, and persists the result when the
// pass changed anything. A failed save leaves the mutated document
// unsaved; rerunning is safe because the pass is idempotent.
func reconcileConversation(cmd *cobra.Command, s *store.SQLiteStore, conv string) reconcileResult {
	ctx := cmd.Context()

	n, err := s.TranscriptLength(ctx, conv)
	if err != nil {
		exitErr("transcript length", err)
	}
	doc, err := s.Document(ctx, conv)
	if err != nil {
		exitErr("load document", err)
	}

	rep := reconcile.Reconcile(doc, n)
	res := reconcileResult{
		Conversation:     conv,
		TranscriptLength: n,
		Report:           rep,
		Persisted:        true,
	}
	if rep.Zero() {
		log.Debug("document for %s already consistent at length %d", conv, n)
		return res
	}

	log.Debug("pruned %d memories, %d character events, %d relationships in %s",
		rep.PrunedMemories, rep.PrunedCharacterEvents, rep.PrunedRelationships, conv)

	if err := s.SaveDocument(ctx, conv, doc); err != nil {
		log.Warn("document for %s not persisted: %v", conv, err)
		res.Persisted = false
	}
	return res
}
