package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "append [content]",
		Short: "Append a message to a conversation transcript",
		Long:  "Append a message to a conversation transcript. Content can be a positional arg or piped via stdin.",
		Run:   runAppend,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.Flags().StringP("role", "r", "user", "Role: user, assistant, system")

	cmd.MarkFlagRequired("conv")

	RootCmd.AddCommand(cmd)
}

func runAppend(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")
	role, _ := cmd.Flags().GetString("role")

	// Get content: positional arg first, then check stdin
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}

	if strings.TrimSpace(content) == "" {
		exitErr("append", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	msg, err := s.AppendMessage(cmd.Context(), store.AppendParams{
		Conversation: conv,
		Role:         role,
		Content:      strings.TrimSpace(content),
	})
	if err != nil {
		exitErr("append", err)
	}

	b, _ := json.Marshal(msg)
	fmt.Println(string(b))
}
