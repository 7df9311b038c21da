package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DNG-hub/StoryArt-sub001/internal/config"
	"github.com/DNG-hub/StoryArt-sub001/internal/store"
)

var contextsCmd = &cobra.Command{
	Use:   "contexts <character>",
	Short: "Inspect a character's location contexts",
	Args:  cobra.ExactArgs(1),
	RunE:  runContexts,
}

func init() {
	rootCmd.AddCommand(contextsCmd)
}

func runContexts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ContextsFor(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no location contexts for %q\n", args[0])
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s @ %s (phase=%s, face_segment=%s)\n  %s\n",
			r.Character, r.Location, r.Phase, r.FaceSegmentPolicy, r.BaseDescription)
	}
	return nil
}
