// Command nestcut optimizes rectangular glass piece layouts on stock sheets
// and emits work orders, labels, and cutting lists.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/glassfab/nestcut/internal/config"
	"github.com/glassfab/nestcut/internal/cutpath"
	"github.com/glassfab/nestcut/internal/export"
	"github.com/glassfab/nestcut/internal/importer"
	"github.com/glassfab/nestcut/internal/model"
	"github.com/glassfab/nestcut/internal/session"
)

var version = "dev"

type CLI struct {
	Optimize *OptimizeCmd `cmd:"" help:"Optimize a design list onto one sheet and export the results"`
	Compare  *CompareCmd  `cmd:"" help:"Run every algorithm on the same design list and rank the outcomes"`
	Version  *VersionCmd  `cmd:"" help:"Show version information"`
}

// SheetFlags is shared between commands that need stock dimensions.
type SheetFlags struct {
	SheetWidth  float64 `help:"Sheet width in mm (default from config)" name:"sheet-width"`
	SheetHeight float64 `help:"Sheet height in mm (default from config)" name:"sheet-height"`
	Thickness   float64 `help:"Sheet thickness in mm (default from config)"`
	Price       float64 `help:"Sheet price per square mm, for cost reporting" default:"0"`
}

// OptionFlags maps the placement options onto CLI flags.
type OptionFlags struct {
	NoRotation    bool    `help:"Disallow 90 degree rotation" name:"no-rotation"`
	Gap           float64 `help:"Minimum gap between pieces in mm" default:"3"`
	Margin        float64 `help:"Margin from the sheet edge in mm" default:"5"`
	TimeLimit     float64 `help:"Soft time budget in seconds for the genetic algorithm" name:"time-limit" default:"30"`
	QualityTarget float64 `help:"Utilization fraction (0..1) at which search stops early" name:"quality-target" default:"0.95"`
}

func (o OptionFlags) toOptions() model.PlacementOptions {
	opts := model.DefaultOptions()
	opts.AllowRotation = !o.NoRotation
	opts.MinimumGap = o.Gap
	opts.EdgeMargin = o.Margin
	opts.TimeLimit = o.TimeLimit
	opts.QualityTarget = o.QualityTarget
	return opts
}

type OptimizeCmd struct {
	Input string `arg:"" help:"Design list file (.csv, .xlsx, or .dxf)"`

	Algorithm string `help:"Placement algorithm: blf, greedy, or genetic" short:"a"`

	SheetFlags
	OptionFlags

	PDF    string `help:"Write a PDF work order to this path"`
	Labels string `help:"Write a PDF of QR piece labels to this path"`
	XLSX   string `help:"Write an XLSX cutting list to this path"`
}

func (c *OptimizeCmd) Run(cfg *config.AppConfig) error {
	reqs, err := loadRequirements(c.Input)
	if err != nil {
		return err
	}

	sheet := resolveSheet(cfg, c.SheetFlags)
	algorithm := cfg.DefaultAlgorithm
	if c.Algorithm != "" {
		algorithm = model.Algorithm(strings.ToLower(c.Algorithm))
	}
	options := c.toOptions()

	sess := session.New()
	record, err := sess.Optimize(session.Request{
		Requirements: reqs,
		Sheet:        sheet,
		Algorithm:    algorithm,
		Options:      &options,
	})
	if err != nil {
		return err
	}

	printRecord(record)

	if c.PDF != "" {
		if err := export.WriteWorkOrderPDF(c.PDF, record); err != nil {
			return fmt.Errorf("work order export: %w", err)
		}
		fmt.Printf("Work order written to %s\n", c.PDF)
	}
	if c.Labels != "" {
		if err := export.WriteLabelsPDF(c.Labels, record); err != nil {
			return fmt.Errorf("label export: %w", err)
		}
		fmt.Printf("Labels written to %s\n", c.Labels)
	}
	if c.XLSX != "" {
		if err := export.WriteCuttingListXLSX(c.XLSX, record); err != nil {
			return fmt.Errorf("cutting list export: %w", err)
		}
		fmt.Printf("Cutting list written to %s\n", c.XLSX)
	}

	cfg.AddRecentFile(c.Input)
	if err := config.Save(config.DefaultConfigPath(), *cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save config: %v\n", err)
	}

	return nil
}

type CompareCmd struct {
	Input string `arg:"" help:"Design list file (.csv, .xlsx, or .dxf)"`

	SheetFlags
	OptionFlags

	Chart string `help:"Write an HTML comparison chart to this path"`
}

func (c *CompareCmd) Run(cfg *config.AppConfig) error {
	reqs, err := loadRequirements(c.Input)
	if err != nil {
		return err
	}

	sheet := resolveSheet(cfg, c.SheetFlags)
	options := c.toOptions()

	sess := session.New()
	comparisons := sess.CompareAlgorithms(session.Request{
		Requirements: reqs,
		Sheet:        sheet,
		Options:      &options,
	})

	fmt.Println("Algorithm comparison (best first):")
	for i, comp := range comparisons {
		if comp.Err != nil {
			fmt.Printf("%d. %-8s failed: %v\n", i+1, comp.Algorithm, comp.Err)
			continue
		}
		s := comp.Record.Stats
		fmt.Printf("%d. %-8s utilization %5.1f%%  placed %d/%d  in %s\n",
			i+1, comp.Algorithm, s.UtilizationRate, s.PlacedPieces, s.TotalPieces, comp.Record.Duration.Round(1e6))
	}

	if c.Chart != "" {
		if err := export.WriteComparisonChartHTML(c.Chart, comparisons); err != nil {
			return fmt.Errorf("chart export: %w", err)
		}
		fmt.Printf("Chart written to %s\n", c.Chart)
	}

	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(cfg *config.AppConfig) error {
	fmt.Printf("nestcut %s\n", version)
	return nil
}

// loadRequirements dispatches to the importer for the file extension and
// reports row-level problems on stderr.
func loadRequirements(path string) ([]model.Requirement, error) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		result = importer.ImportCSV(path)
	case ".xlsx", ".xls":
		result = importer.ImportExcel(path)
	case ".dxf":
		result = importer.ImportDXF(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .csv, .xlsx, or .dxf)", filepath.Ext(path))
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	if len(result.Requirements) == 0 {
		return nil, fmt.Errorf("no usable designs in %s", path)
	}
	return result.Requirements, nil
}

func resolveSheet(cfg *config.AppConfig, flags SheetFlags) model.Sheet {
	sheet := cfg.DefaultSheet
	if flags.SheetWidth > 0 {
		sheet.Width = flags.SheetWidth
	}
	if flags.SheetHeight > 0 {
		sheet.Height = flags.SheetHeight
	}
	if flags.Thickness > 0 {
		sheet.Thickness = flags.Thickness
	}
	if flags.Price > 0 {
		sheet.PricePerArea = flags.Price
	}
	return sheet
}

func printRecord(record *model.OptimizationRecord) {
	s := record.Stats
	fmt.Printf("Run %s (%s) finished in %s\n", record.ID, record.Algorithm, record.Duration.Round(1e6))
	fmt.Printf("  Placed %d/%d pieces, utilization %.1f%%, waste %.1f%%\n",
		s.PlacedPieces, s.TotalPieces, s.UtilizationRate, s.WasteRate)
	fmt.Printf("  Largest reusable offcut: %.0f sq mm\n", s.LargestWaste)
	if s.EstimatedCost > 0 {
		fmt.Printf("  Material cost %.2f, waste cost %.2f\n", s.EstimatedCost, s.WasteCost)
	}
	for _, p := range record.Result.Unplaced {
		fmt.Printf("  UNPLACED: %s (%.0f x %.0f mm)\n", p.ID, p.Width, p.Height)
	}
	fmt.Printf("  Cut sequence: %d segments, %.0f mm tool travel\n",
		len(record.CutPaths), cutpath.TravelDistance(record.CutPaths))
}

func main() {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load config: %v\n", err)
		cfg = config.DefaultAppConfig()
	}

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("nestcut"),
		kong.Description("Sheet nesting optimizer for glass fabrication"),
		kong.UsageOnError(),
		kong.Bind(&cfg),
	)
	if err := ctx.Run(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
