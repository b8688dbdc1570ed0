package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Update a character's state",
		Long: "Update a character's derived state: add known memory ids or set the " +
			"emotion-inference message window.",
		Run: runCharacter,
	}

	cmd.Flags().StringP("conv", "c", "", "Conversation id (required)")
	cmd.Flags().StringP("name", "n", "", "Character name (required)")
	cmd.Flags().String("events", "", "Comma-separated memory ids to add to known events")
	cmd.Flags().Int("emotion-min", -1, "Emotion window start index")
	cmd.Flags().Int("emotion-max", -1, "Emotion window end index")

	cmd.MarkFlagRequired("conv")
	cmd.MarkFlagRequired("name")

	RootCmd.AddCommand(cmd)
}

func runCharacter(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conv")
	name, _ := cmd.Flags().GetString("name")
	eventsStr, _ := cmd.Flags().GetString("events")
	emotionMin, _ := cmd.Flags().GetInt("emotion-min")
	emotionMax, _ := cmd.Flags().GetInt("emotion-max")

	hasWindow := emotionMin >= 0 || emotionMax >= 0
	if hasWindow && (emotionMin < 0 || emotionMax < emotionMin) {
		exitErr("character", fmt.Errorf("emotion window needs 0 <= min <= max, got min=%d max=%d", emotionMin, emotionMax))
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

	c := doc.Character(name)
	c.KnownEvents = append(c.KnownEvents, splitList(eventsStr)...)
	if hasWindow {
		c.Emotion = &model.EmotionRange{Min: emotionMin, Max: emotionMax}
	}

	if err := s.SaveDocument(ctx, conv, doc); err != nil {
		exitErr("save document", err)
	}

	b, _ := json.Marshal(map[string]*model.CharacterState{name: c})
	fmt.Println(string(b))
}
