package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a conversation as JSON",
		Long:  "Export a conversation snapshot (transcript plus memory document) as JSON.",
		Run:   runExport,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.MarkFlagRequired("conv")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snap, err := s.Export(cmd.Context(), conv)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(snap, "", "  ")
	fmt.Println(string(b))
}
