package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "convs",
		Short: "List conversations",
		Run:   runConvs,
	}

	RootCmd.AddCommand(cmd)
}

func runConvs(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	infos, err := s.Conversations(cmd.Context())
	if err != nil {
		exitErr("convs", err)
	}

	b, _ := json.MarshalIndent(infos, "", "  ")
	fmt.Println(string(b))
}
