package cmd

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/polynest/internal/engine"
	"github.com/piwi3910/polynest/internal/export"
	"github.com/piwi3910/polynest/internal/importer"
	"github.com/piwi3910/polynest/internal/project"
)

var (
	inputPath  string
	outputPath string
	tuningPath string
	dxfPath    string
	pdfPath    string
	labelsPath string
	xlsxPath   string
	concavity  bool
)

// dxfAngles is the default rotation set assigned to pieces imported from DXF
// drawings, which carry no angle metadata.
var dxfAngles = []int{0, 90, 180, 270}

// rootCmd is the base command; the optional positional argument is the
// master seed for a reproducible run.
var rootCmd = &cobra.Command{
	Use:   "polynest [seed]",
	Short: "nest irregular 2D shapes onto boards",
	Long: `PolyNest places arbitrary simple polygons onto as few rectangular
boards as possible, maximizing area utilization. A genetic search explores
placement orders and per-piece rotations; a deterministic bottom-left placer
turns each candidate into a layout.

With no argument the RNG seed is derived from the clock and process id.
With one numeric argument the run is fully reproducible.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "input_shapes.json", "input problem file")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "genetic_nesting_optimized_result.json", "result file")
	rootCmd.Flags().StringVar(&tuningPath, "tuning", "", "YAML file overriding the search parameters")
	rootCmd.Flags().StringVar(&dxfPath, "dxf", "", "DXF drawing with additional pieces")
	rootCmd.Flags().StringVar(&pdfPath, "pdf", "", "render the layout as a PDF")
	rootCmd.Flags().StringVar(&labelsPath, "labels", "", "write QR-coded piece labels as a PDF")
	rootCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the run report as a workbook")
	rootCmd.Flags().BoolVar(&concavity, "concavity", true, "re-seat small pieces into concavities of large ones")

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.Flags().AddGoFlagSet(klogFlags)
}

// masterSeed returns the positional seed when given, otherwise one derived
// from the wall clock in nanoseconds and the process id.
func masterSeed(args []string) (int64, error) {
	if len(args) == 0 {
		return time.Now().UnixNano() ^ int64(os.Getpid()), nil
	}
	u, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing seed %q", args[0])
	}
	return int64(u), nil
}

func run(_ *cobra.Command, args []string) error {
	seed, err := masterSeed(args)
	if err != nil {
		return err
	}

	cfg, err := project.LoadTuning(tuningPath)
	if err != nil {
		return err
	}

	prob, err := project.LoadProblem(inputPath)
	if err != nil {
		return err
	}

	if dxfPath != "" {
		outlines, warnings, err := importer.ImportDXF(dxfPath)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			klog.Warningf("dxf: %s", w)
		}
		if err := project.AppendPieces(prob, outlines, dxfAngles); err != nil {
			return err
		}
	}

	klog.Infof("nesting %d piece(s) on %gx%g boards (seed %d)",
		len(prob.Pieces), prob.BoardWidth, prob.BoardHeight, seed)

	start := time.Now()
	nest, best, err := engine.Run(prob, cfg, seed)
	if err != nil {
		return err
	}
	if concavity {
		engine.RefineConcavities(nest, prob)
	}
	elapsed := time.Since(start).Seconds()

	klog.Infof("done in %.3fs: %d board(s), %.2f%% efficiency, fitness %.2f",
		elapsed, len(nest.Boards), nest.TotalEfficiency(), best.Fitness)

	doc := project.BuildResult(nest, prob, elapsed)
	// The layout is already computed; on a write failure, report it, still
	// run the optional exports, and exit non-zero at the end.
	saveErr := project.SaveResult(outputPath, doc)
	if saveErr != nil {
		klog.Errorf("saving result: %v", saveErr)
	}

	if pdfPath != "" {
		if err := export.ExportPDF(pdfPath, nest, prob); err != nil {
			klog.Errorf("exporting PDF: %v", err)
		}
	}
	if labelsPath != "" {
		if err := export.ExportLabels(labelsPath, nest); err != nil {
			klog.Errorf("exporting labels: %v", err)
		}
	}
	if xlsxPath != "" {
		if err := export.ExportXLSX(xlsxPath, nest, prob, elapsed); err != nil {
			klog.Errorf("exporting workbook: %v", err)
		}
	}
	return saveErr
}
