package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/DNG-hub/StoryArt-sub001/internal/config"
	"github.com/DNG-hub/StoryArt-sub001/internal/fillin"
	"github.com/DNG-hub/StoryArt-sub001/internal/logger"
	"github.com/DNG-hub/StoryArt-sub001/internal/narrative"
	"github.com/DNG-hub/StoryArt-sub001/internal/pipeline"
	"github.com/DNG-hub/StoryArt-sub001/internal/report"
	"github.com/DNG-hub/StoryArt-sub001/internal/session"
	"github.com/DNG-hub/StoryArt-sub001/internal/store"
)

var (
	compileSceneFile string
	compileSessionID string
	compileJSON      bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the beats of a scene fixture into rendering prompts",
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileSceneFile, "scene", "", "Scene fixture YAML file (required)")
	compileCmd.Flags().StringVar(&compileSessionID, "session", "", "Session ID for continuity caching (default: new)")
	compileCmd.Flags().BoolVar(&compileJSON, "json", false, "Emit full validation reports as JSON")
	_ = compileCmd.MarkFlagRequired("scene")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	scene, err := narrative.LoadScene(compileSceneFile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := buildPipeline(cfg, st)
	if err != nil {
		return err
	}

	sessionID := compileSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	results, err := p.CompileScene(cmd.Context(), sessionID, scene)
	if err != nil {
		return err
	}

	for _, r := range results {
		if compileJSON {
			out, err := json.MarshalIndent(r.Report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			continue
		}
		status := "ok"
		if !r.Report.Valid {
			status = fmt.Sprintf("INVALID (%d issues)", len(r.Report.Issues))
		}
		fmt.Printf("[%s] %s\n%s\n\n", r.BeatID, status, r.Prompt)
	}
	return nil
}

func buildPipeline(cfg *config.Config, st *store.Store) (*pipeline.Pipeline, error) {
	var provider fillin.Provider
	if cfg.Generation.Provider != "" {
		var err error
		provider, err = fillin.NewProvider(fillin.ProviderConfig{
			Type:    cfg.Generation.Provider,
			APIKey:  cfg.Generation.APIKey,
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("generation provider: %w", err)
		}
	} else {
		logger.Info("no generation provider configured, using deterministic fill-in")
	}
	gen := fillin.NewGenerator(provider, time.Duration(cfg.Generation.TimeoutSeconds)*time.Second)

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	var cache session.Cache
	if cfg.Session.RedisAddr != "" {
		rc, err := session.NewRedisCache(cfg.Session.RedisAddr, ttl)
		if err != nil {
			return nil, fmt.Errorf("session cache: %w", err)
		}
		cache = rc
	} else {
		cache = session.NewMemoryCache(ttl)
	}

	audit := report.NewWriter(cfg.Audit.Dir, cfg.Audit.FilePrefix, cfg.Audit.RetentionDays, cfg.Audit.Enabled)

	return pipeline.New(st, gen, cache, audit), nil
}
