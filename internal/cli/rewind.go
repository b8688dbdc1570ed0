package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rewind",
		Short: "Rewind a conversation to an earlier length",
		Long: "Truncate the transcript to the given length (keeping messages 0..length-1) " +
			"and reconcile the memory document against the shortened branch.",
		Run: runRewind,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.Flags().IntP("length", "l", -1, "New transcript length (required)")

	cmd.MarkFlagRequired("conv")
	cmd.MarkFlagRequired("length")

	RootCmd.AddCommand(cmd)
}

func runRewind(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")
	length, _ := cmd.Flags().GetInt("length")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	removed, err := s.Truncate(cmd.Context(), conv, length)
	if err != nil {
		exitErr("rewind", err)
	}

	res := reconcileConversation(cmd, s, conv)
	res.RemovedMessages = removed

	b, _ := json.Marshal(res)
	fmt.Println(string(b))
	if !res.Persisted {
		os.Exit(1)
	}
}
