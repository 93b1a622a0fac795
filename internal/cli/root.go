package cli

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/piwi3910/StoryMap/internal/project"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// It is called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOpts holds the persistent flags shared by every command.
type rootOpts struct {
	verbose    bool
	configPath string
	gap        float64 // overrides the configured gap when gapSet
	gapSet     bool
	grid       float64 // turns on snapping with this cell size when > 0
}

// Execute runs the storymapctl CLI with the given context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "storymapctl",
		Short:        "Edit StoryMap story files from the command line",
		Long:         `storymapctl creates, lays out, imports and exports StoryMap story files using the same placement engine as the desktop app.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			opts.gapSet = cmd.Flags().Changed("gap")
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("storymapctl %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", project.DefaultConfigPath(), "app config file")
	root.PersistentFlags().Float64Var(&opts.gap, "gap", 0, "gap between placed passages (default from config)")
	root.PersistentFlags().Float64Var(&opts.grid, "grid", 0, "snap to a grid of this size while editing")

	root.AddCommand(newNewCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newPlaceCmd(opts))
	root.AddCommand(newLinkCmd(opts))
	root.AddCommand(newSelectCmd(opts))
	root.AddCommand(newMoveCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newExportCmd(opts))

	return root
}

// loadConfig reads the app config. A missing config file yields defaults.
func (o *rootOpts) loadConfig() (model.AppConfig, error) {
	return project.LoadAppConfig(o.configPath)
}

// placer returns a placer for the configured settings. An explicit --gap 0
// is honoured even though a zero gap in the config file means "default".
func (o *rootOpts) placer(cfg model.AppConfig) (*engine.Placer, error) {
	settings := cfg.PlacementSettings()
	if o.gapSet {
		settings.Gap = o.gap
	}
	p := engine.New(settings)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// applyGrid turns on snapping when --grid was given.
func (o *rootOpts) applyGrid(s *model.Story) error {
	if o.grid == 0 {
		return nil
	}
	g := model.Grid{SnapToGrid: true, Size: o.grid}
	if err := g.Validate(); err != nil {
		return err
	}
	s.SnapToGrid = true
	s.GridSize = o.grid
	return nil
}

// editStory loads the story at path, applies --grid, runs fn and saves the
// result. Nothing is written when fn fails.
func (o *rootOpts) editStory(ctx context.Context, path string, fn func(*model.Story) error) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	story, err := project.LoadStory(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded story", "path", path, "passages", len(story.Passages))

	if err := o.applyGrid(&story); err != nil {
		return err
	}
	if err := fn(&story); err != nil {
		return err
	}
	if err := project.SaveStory(path, story); err != nil {
		return err
	}
	prog.done("Saved " + path)
	return nil
}
