package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a conversation's memory document",
		Run:   runShow,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.MarkFlagRequired("conv")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	doc, err := s.Document(cmd.Context(), conv)
	if err != nil {
		exitErr("load document", err)
	}

	b, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Println(string(b))
}
