// Package pipeline wires the four compilation phases together and threads
// scene continuity forward beat by beat. Beats within one scene run
// strictly in narrative order; scenes are independent of each other.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/DNG-hub/StoryArt-sub001/internal/fillin"
	"github.com/DNG-hub/StoryArt-sub001/internal/logger"
	"github.com/DNG-hub/StoryArt-sub001/internal/narrative"
	"github.com/DNG-hub/StoryArt-sub001/internal/report"
	"github.com/DNG-hub/StoryArt-sub001/internal/session"
	"github.com/DNG-hub/StoryArt-sub001/internal/specbuild"
	"github.com/DNG-hub/StoryArt-sub001/internal/validate"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// DataSource supplies the compiler's relational facts. *store.Store
// satisfies it; tests provide fixtures.
type DataSource interface {
	Character(name string) (vbs.Character, error)
	Location(name string) (vbs.Location, error)
	ContextsFor(character string) ([]vbs.LocationContext, error)
}

// BeatResult is the outcome of compiling one beat.
type BeatResult struct {
	BeatID  string
	Prompt  string
	Report  validate.Report
	Spec    *vbs.Spec
	Summary string
}

// Pipeline compiles beats into validated rendering prompts.
type Pipeline struct {
	source DataSource
	gen    *fillin.Generator
	cache  session.Cache  // optional
	audit  *report.Writer // optional
}

// New creates a pipeline. cache and audit may be nil.
func New(source DataSource, gen *fillin.Generator, cache session.Cache, audit *report.Writer) *Pipeline {
	return &Pipeline{source: source, gen: gen, cache: cache, audit: audit}
}

// CompileBeat runs one beat through phases A-D. state is consumed as an
// immutable snapshot; prevLocation and prevSummary carry continuity from
// the preceding beat. Only the zero-subject, zero-environment condition is
// a hard failure.
func (p *Pipeline) CompileBeat(ctx context.Context, beat narrative.Beat, defaultLocation string,
	prevLocation, prevSummary string, state vbs.SceneState) (*BeatResult, error) {

	locationName := beat.Location
	if strings.TrimSpace(locationName) == "" {
		locationName = defaultLocation
	}
	location, err := p.source.Location(locationName)
	if err != nil {
		logger.Warn("beat %s: %v, compiling without location record", beat.ID, err)
		location = vbs.Location{Name: locationName}
	}

	characters := make(map[string]vbs.Character, len(state.CharactersPresent))
	contexts := make(map[string][]vbs.LocationContext, len(state.CharactersPresent))
	for _, name := range state.CharactersPresent {
		char, err := p.source.Character(name)
		if err != nil {
			logger.Warn("beat %s: %v", beat.ID, err)
			continue
		}
		characters[name] = char
		records, err := p.source.ContextsFor(name)
		if err != nil {
			return nil, fmt.Errorf("beat %s: load contexts for %q: %w", beat.ID, name, err)
		}
		contexts[name] = records
	}

	spec, err := specbuild.Build(specbuild.Request{
		Beat:                beat,
		SceneLocation:       location,
		DefaultLocation:     defaultLocation,
		PreviousLocation:    prevLocation,
		PreviousBeatSummary: prevSummary,
		State:               state,
		Characters:          characters,
		Contexts:            contexts,
	})
	if err != nil {
		return nil, err
	}

	p.gen.Fill(ctx, spec, beat)

	rep := validate.Run(spec)

	if p.audit != nil {
		if err := p.audit.WriteBeat(beat.ID, beat.SceneNumber, rep); err != nil {
			logger.Warn("beat %s: audit write failed: %v", beat.ID, err)
		}
	}

	return &BeatResult{
		BeatID:  beat.ID,
		Prompt:  rep.FinalPrompt,
		Report:  rep,
		Spec:    spec,
		Summary: summarize(spec),
	}, nil
}

// CompileScene compiles every beat of a scene in order, threading the state
// snapshot, beat location, and continuity summary forward. State starts
// from the scene's initial state: continuity is scoped to one scene and
// resets at scene boundaries.
func (p *Pipeline) CompileScene(ctx context.Context, sessionID string, scene *narrative.Scene) ([]*BeatResult, error) {
	state := scene.InitialState.State()
	prevSummary := ""
	prevLocation := ""

	if p.cache != nil && sessionID != "" {
		if cached, ok, err := p.cache.SceneState(ctx, sessionID, scene.Number); err != nil {
			logger.Warn("scene %d: session cache read failed: %v", scene.Number, err)
		} else if ok {
			state = cached
		}
		if s, err := p.cache.Summary(ctx, sessionID, scene.Number); err == nil && s != "" {
			prevSummary = s
		}
	}

	results := make([]*BeatResult, 0, len(scene.Beats))
	for _, beat := range scene.Beats {
		result, err := p.CompileBeat(ctx, beat, scene.DefaultLocation, prevLocation, prevSummary, state)
		if err != nil {
			return results, fmt.Errorf("scene %d: %w", scene.Number, err)
		}
		results = append(results, result)

		prevSummary = result.Summary
		prevLocation = beat.Location
		if prevLocation == "" {
			prevLocation = scene.DefaultLocation
		}

		if p.cache != nil && sessionID != "" {
			if err := p.cache.SaveSceneState(ctx, sessionID, scene.Number, state); err != nil {
				logger.Warn("scene %d: session cache write failed: %v", scene.Number, err)
			}
			if err := p.cache.SaveSummary(ctx, sessionID, scene.Number, prevSummary); err != nil {
				logger.Warn("scene %d: session cache write failed: %v", scene.Number, err)
			}
		}
	}
	return results, nil
}

// CompileEpisode compiles independent scenes concurrently, bounded by
// parallelism. Beat order inside each scene is untouched.
func (p *Pipeline) CompileEpisode(ctx context.Context, sessionID string, scenes []*narrative.Scene, parallelism int) (map[int][]*BeatResult, error) {
	if parallelism <= 0 {
		parallelism = 2
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	results := make([]struct {
		scene   int
		results []*BeatResult
	}, len(scenes))

	for i, scene := range scenes {
		i, scene := i, scene
		g.Go(func() error {
			r, err := p.CompileScene(ctx, sessionID, scene)
			if err != nil {
				return err
			}
			results[i].scene = scene.Number
			results[i].results = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int][]*BeatResult, len(scenes))
	for _, r := range results {
		out[r.scene] = r.results
	}
	return out, nil
}

const maxSummaryChars = 180

// summarize projects a finished spec into the next beat's continuity hint.
func summarize(spec *vbs.Spec) string {
	var parts []string
	for _, s := range spec.Subjects {
		if s.Action == "" {
			parts = append(parts, s.CharacterName)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", s.CharacterName, s.Action))
	}

	summary := strings.Join(parts, "; ")
	if loc := strings.TrimSpace(spec.Environment.LocationShorthand); loc != "" {
		if summary == "" {
			summary = loc
		} else {
			summary += " at " + loc
		}
	}

	if len(summary) > maxSummaryChars {
		summary = strings.TrimSpace(summary[:maxSummaryChars])
	}
	return summary
}
