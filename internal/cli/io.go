package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/StoryMap/internal/export"
	"github.com/piwi3910/StoryMap/internal/importer"
	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/piwi3910/StoryMap/internal/project"
)

// importers maps a source file extension to its reader.
var importers = map[string]func(path string) importer.ImportResult{
	".csv":  importer.ImportCSV,
	".txt":  importer.ImportCSV,
	".tsv":  importer.ImportCSV,
	".xlsx": importer.ImportExcel,
	".dxf":  importer.ImportDXF,
}

func newImportCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file> <source>",
		Short: "Merge passages from a CSV, Excel or DXF file",
		Long: `Merge passages from a table (CSV, TSV or .xlsx with a Name column and
optional Left, Top, Width, Height, Links, Tags and Text columns) or from the
closed outlines of a DXF drawing. Rows without a position are placed
automatically. Names that already exist get a numbered suffix.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}
}

func runImport(ctx context.Context, w io.Writer, opts *rootOpts, path, source string) error {
	logger := loggerFromContext(ctx)

	read, ok := importers[strings.ToLower(filepath.Ext(source))]
	if !ok {
		return fmt.Errorf("unsupported import format %q (want one of %s)", filepath.Ext(source), strings.Join(importExtensions(), ", "))
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	placer, err := opts.placer(cfg)
	if err != nil {
		return err
	}

	result := read(source)
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	for _, e := range result.Errors {
		printWarning(w, "%s", e)
	}
	if len(result.Passages) == 0 {
		return fmt.Errorf("nothing imported from %s", source)
	}

	return opts.editStory(ctx, path, func(s *model.Story) error {
		merged, err := importer.Merge(s, result, placer)
		if err != nil {
			return err
		}
		printSuccess(w, "Imported %d passages (%d placed automatically)", merged.Added, merged.Placed)
		for _, r := range merged.Renamed {
			printDetail(w, "renamed %s", r)
		}
		return nil
	})
}

func importExtensions() []string {
	exts := make([]string, 0, len(importers))
	for ext := range importers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// exportFormat describes one export target.
type exportFormat struct {
	suffix string
	write  func(path string, story model.Story) error
}

var exportFormats = map[string]exportFormat{
	"pdf":   {"-map.pdf", export.ExportPDF},
	"cards": {"-cards.pdf", export.ExportCards},
	"dxf":   {".dxf", export.ExportDXF},
	"xlsx":  {".xlsx", export.ExportXLSX},
}

func newExportCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a story map",
	}
	for _, name := range []string{"pdf", "cards", "dxf", "xlsx"} {
		cmd.AddCommand(newExportFormatCmd(name, exportFormats[name]))
	}
	return cmd
}

func newExportFormatCmd(name string, format exportFormat) *cobra.Command {
	var output string
	short := map[string]string{
		"pdf":   "Export the map and a passage index as PDF",
		"cards": "Export printable passage cards with QR codes as PDF",
		"dxf":   "Export passages, links and names as a DXF drawing",
		"xlsx":  "Export passage and link tables as an Excel workbook",
	}[name]

	cmd := &cobra.Command{
		Use:   name + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), args[0], output, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: next to the story)")
	return cmd
}

// defaultExportPath derives the export file name from the story path.
func defaultExportPath(storyPath, suffix string) string {
	return strings.TrimSuffix(storyPath, filepath.Ext(storyPath)) + suffix
}

func runExport(ctx context.Context, w io.Writer, path, output string, format exportFormat) error {
	prog := newProgress(loggerFromContext(ctx))

	story, err := project.LoadStory(path)
	if err != nil {
		return err
	}
	if output == "" {
		output = defaultExportPath(path, format.suffix)
	}
	if err := format.write(output, story); err != nil {
		return err
	}

	prog.done("Exported " + output)
	printSuccess(w, "Exported %d passages", len(story.Passages))
	printFile(w, output)
	return nil
}
