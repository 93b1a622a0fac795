package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/piwi3910/StoryMap/internal/project"
)

// ErrStoryExists is returned by new when the target file is already there.
var ErrStoryExists = errors.New("story file already exists")

func newNewCmd(opts *rootOpts) *cobra.Command {
	var name string
	var force bool

	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty story file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd.Context(), cmd.OutOrStdout(), opts, args[0], name, force)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "story name (default: file name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func runNew(ctx context.Context, w io.Writer, opts *rootOpts, path, name string, force bool) error {
	logger := loggerFromContext(ctx)
	path = project.EnsureExtension(path)

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrStoryExists, path)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if name == "" {
		name = project.StoryNameFromPath(path)
	}
	story := model.NewStory(name)
	cfg.ApplyToStory(&story)
	if err := opts.applyGrid(&story); err != nil {
		return err
	}

	if err := project.SaveStory(path, story); err != nil {
		return err
	}
	logger.Debug("created story", "name", name, "snap", story.SnapToGrid, "grid", story.GridSize)
	printSuccess(w, "Created story %q", name)
	printFile(w, path)
	return nil
}

func newListCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List the passages of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := project.LoadStory(args[0])
			if err != nil {
				return err
			}
			printPassages(cmd.OutOrStdout(), story)
			return nil
		},
	}
}

// printPassages writes one line per passage; selected passages are marked
// with an asterisk.
func printPassages(w io.Writer, story model.Story) {
	nameStyle := lipgloss.NewStyle().Width(24)
	numStyle := lipgloss.NewStyle().Width(9).Align(lipgloss.Right)

	printKeyValue(w, "Story", story.Name)
	printKeyValue(w, "Passages", fmt.Sprint(len(story.Passages)))
	if story.SnapToGrid {
		printKeyValue(w, "Grid", fmt.Sprintf("%g", story.GridSize))
	}

	header := "  " + nameStyle.Render("NAME") +
		numStyle.Render("LEFT") + numStyle.Render("TOP") +
		numStyle.Render("WIDTH") + numStyle.Render("HEIGHT") + "  LINKS"
	fmt.Fprintln(w, styleHeader.Render(header))

	for _, p := range story.Passages {
		mark := "  "
		name := nameStyle.Render(p.Name)
		if p.Selected {
			mark = "* "
			name = styleSelected.Inherit(nameStyle).Render(p.Name)
		}
		fmt.Fprintln(w, mark+name+
			numStyle.Render(fmt.Sprintf("%g", p.Left))+
			numStyle.Render(fmt.Sprintf("%g", p.Top))+
			numStyle.Render(fmt.Sprintf("%g", p.Width))+
			numStyle.Render(fmt.Sprintf("%g", p.Height))+
			"  "+styleDim.Render(strings.Join(p.Links, ", ")))
	}
}

func newPlaceCmd(opts *rootOpts) *cobra.Command {
	var at, name string

	cmd := &cobra.Command{
		Use:   "place <file>",
		Short: "Add a passage at the nearest free spot around an anchor",
		Long: `Add a passage centred on --at. When that spot is taken, the passage is
moved right, then left, then diagonally down until it no longer overlaps
any other passage. Without --name the first free "Untitled Passage" name is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd.Context(), cmd.OutOrStdout(), opts, args[0], at, name)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "anchor point as left,top (default: centre of a passage at the origin)")
	cmd.Flags().StringVar(&name, "name", "", "passage name")
	return cmd
}

func runPlace(ctx context.Context, w io.Writer, opts *rootOpts, path, at, name string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	placer, err := opts.placer(cfg)
	if err != nil {
		return err
	}

	anchor := model.Point{Left: placer.Settings.PassageWidth / 2, Top: placer.Settings.PassageHeight / 2}
	if at != "" {
		if anchor, err = parsePoint(at); err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	}

	return opts.editStory(ctx, path, func(s *model.Story) error {
		var p model.Passage
		var err error
		if name == "" {
			p, err = placer.CreateUntitledPassage(*s, anchor)
		} else {
			p, err = placer.CreateNamedPassage(*s, name, anchor)
		}
		if err != nil {
			return err
		}
		if err := s.AddPassages(p); err != nil {
			return err
		}
		printSuccess(w, "Placed %q at (%g, %g)", p.Name, p.Left, p.Top)
		return nil
	})
}

func newLinkCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "link <file> <source> <target>...",
		Short: "Link a passage to targets, creating missing ones below it",
		Long: `Add links from the source passage to each target. Targets that do not
exist yet are created as a row centred under the source and moved as one
block until the row is clear of other passages.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1], args[2:])
		},
	}
}

func runLink(ctx context.Context, w io.Writer, opts *rootOpts, path, sourceName string, targets []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	placer, err := opts.placer(cfg)
	if err != nil {
		return err
	}

	return opts.editStory(ctx, path, func(s *model.Story) error {
		source, ok := s.PassageByName(sourceName)
		if !ok {
			return fmt.Errorf("%w: %q", engine.ErrPassageNotFound, sourceName)
		}
		created, err := placer.CreateLinkedPassages(*s, source.ID, targets)
		if err != nil {
			return err
		}
		if err := s.AddPassages(created...); err != nil {
			return err
		}
		s.AddLinks(source.ID, targets)

		printSuccess(w, "Linked %q to %d passages", source.Name, len(targets))
		for _, p := range created {
			printDetail(w, "created %q at (%g, %g)", p.Name, p.Left, p.Top)
		}
		return nil
	})
}

func newSelectCmd(opts *rootOpts) *cobra.Command {
	var rect string
	var additive bool
	var zoom float64

	cmd := &cobra.Command{
		Use:   "select <file>",
		Short: "Select the passages inside a rectangle",
		Long: `Run a marquee selection. --rect is given in screen pixels at --zoom, like a
drag on the canvas. Without --add, passages outside the rectangle are
deselected; with it, the hits are added to the current selection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRect(rect)
			if err != nil {
				return fmt.Errorf("--rect: %w", err)
			}
			return runSelect(cmd.Context(), cmd.OutOrStdout(), opts, args[0], r, additive, zoom)
		},
	}

	cmd.Flags().StringVar(&rect, "rect", "", "selection rectangle as left,top,width,height")
	cmd.Flags().BoolVarP(&additive, "add", "a", false, "add to the current selection")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "zoom the rectangle was drawn at")
	_ = cmd.MarkFlagRequired("rect")
	return cmd
}

func runSelect(ctx context.Context, w io.Writer, opts *rootOpts, path string, screen model.Rect, additive bool, zoom float64) error {
	logger := loggerFromContext(ctx)
	mode := model.SelectExclusive
	if additive {
		mode = model.SelectAdditive
	}

	return opts.editStory(ctx, path, func(s *model.Story) error {
		m := engine.BeginMarquee(*s, mode, zoom)
		m.OnPreview = func(ids []string) {
			logger.Debug("marquee preview", "hits", len(ids))
		}
		m.Update(screen)
		change := m.End()
		s.ApplySelection(change)

		printSuccess(w, "%d selected, %d deselected", len(change.Selected), len(change.Deselected))
		for _, id := range s.SelectedIDs() {
			p, _ := s.PassageByID(id)
			printDetail(w, "%s", p.Name)
		}
		return nil
	})
}

func newMoveCmd(opts *rootOpts) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "move <file>",
		Short: "Move the selected passages by a vector",
		Long: `Move every selected passage by --by. Positions are snapped when the story
snaps to a grid and clamped to non-negative coordinates. A passage dropped
onto an unselected one is pushed out along the shorter axis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parsePoint(by)
			if err != nil {
				return fmt.Errorf("--by: %w", err)
			}
			return runMove(cmd.Context(), cmd.OutOrStdout(), opts, args[0], v)
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "displacement as dx,dy")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func runMove(ctx context.Context, w io.Writer, opts *rootOpts, path string, by model.Point) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	placer, err := opts.placer(cfg)
	if err != nil {
		return err
	}

	return opts.editStory(ctx, path, func(s *model.Story) error {
		rects, err := engine.MoveSelected(*s, by.Left, by.Top, placer.Settings.Gap)
		if err != nil {
			return err
		}
		if len(rects) == 0 {
			printWarning(w, "No passages selected")
			return nil
		}
		s.SetRects(rects)
		printSuccess(w, "Moved %d passages", len(rects))
		return nil
	})
}
