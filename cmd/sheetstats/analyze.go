package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetstats-go/internal/chart"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/timeline"
)

const dateLayout = "2006-01-02"

var (
	seriesNames []string
	fromDate    string
	toDate      string
	granularity string
	overlay     bool
	format      string
	outputPath  string
	outDir      string
)

type analyzeOutput struct {
	Series     []models.Series    `json:"series"`
	Comparison *models.Comparison `json:"comparison,omitempty"`
	Max        int                `json:"max"`
}

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [input.xlsx]",
		Short: "Count events per period for one or more series",
		Long: `analyze counts the events of each series per day or hour between
--from and --to (inclusive) and prints them as a table, JSON, PNG or HTML.
Without --series every series of the workbook is analyzed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, a, args[0])
		},
	}

	cmd.Flags().StringSliceVarP(&seriesNames, "series", "s", nil, "Series to analyze (repeatable; default: all)")
	cmd.Flags().StringVar(&fromDate, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&toDate, "to", "", "Last day, YYYY-MM-DD")
	cmd.Flags().StringVarP(&granularity, "granularity", "g", "day", "Bucket width: day or hour")
	cmd.Flags().BoolVar(&overlay, "overlay", false, "Compare series on shared periods")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, png, html")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for per-series PNG files")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, inputPath string) error {
	switch format {
	case "table", "json", "png", "html":
	default:
		return fmt.Errorf("invalid format: %s (must be table, json, png, or html)", format)
	}

	analyzer, err := a.open(inputPath)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	q, err := buildQuery(fromDate, toDate, granularity, analyzer.Location(), a.cfg.Server.MaxBuckets)
	if err != nil {
		return err
	}

	names := seriesNames
	if len(names) == 0 {
		if names, err = analyzer.SeriesNames(); err != nil {
			return err
		}
	}

	result, err := analyzer.AnalyzeMany(names, q)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if format == "png" && outDir != "" {
		return writePNGFiles(result, outDir)
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writeResult(out, result)
}

func buildQuery(from, to, g string, loc *time.Location, maxBuckets int) (models.Query, error) {
	start, err := time.ParseInLocation(dateLayout, from, loc)
	if err != nil {
		return models.Query{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout, to, loc)
	if err != nil {
		return models.Query{}, fmt.Errorf("invalid --to: %w", err)
	}
	gran, err := models.ParseGranularity(g)
	if err != nil {
		return models.Query{}, err
	}
	q := models.Query{Range: models.DayRange(start, end), Granularity: gran}
	if err := timeline.Limit(q, maxBuckets); err != nil {
		return models.Query{}, err
	}
	return q, nil
}

func writeResult(out io.Writer, result []models.Series) error {
	switch format {
	case "json":
		data := analyzeOutput{Series: result, Max: timeline.GlobalMax(result...)}
		if overlay {
			cmp := timeline.Compare(result...)
			data.Comparison = &cmp
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "png":
		if len(result) != 1 {
			return fmt.Errorf("png output takes exactly one series (got %d); use --out-dir for several", len(result))
		}
		img, err := chart.PNG(result[0], result[0].Max())
		if err != nil {
			return err
		}
		_, err = out.Write(img)
		return err
	case "html":
		return chart.HTML(out, result, chart.HTMLOptions{
			Title:   fmt.Sprintf("%s to %s", fromDate, toDate),
			Overlay: overlay,
		})
	default:
		_, err := fmt.Fprintln(out, chart.Table(result))
		return err
	}
}

// writePNGFiles writes one chart per series, all on the same Y scale.
func writePNGFiles(result []models.Series, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	yMax := timeline.GlobalMax(result...)
	used := make(map[string]bool, len(result))
	for _, s := range result {
		img, err := chart.PNG(s, yMax)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		filename, err := chartPath(dir, s.Name, used)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filename, img, 0644); err != nil {
			return err
		}
	}
	return nil
}

// chartPath returns a path directly inside dir for the chart of series name.
// Separators and other characters unsafe in file names become "_", and a
// numeric suffix keeps names in used distinct.
func chartPath(dir, name string, used map[string]bool) (string, error) {
	base := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if strings.Trim(base, ".") == "" {
		base = "series" + base
	}

	file := base
	for i := 2; used[strings.ToLower(file)]; i++ {
		file = fmt.Sprintf("%s_%d", base, i)
	}
	used[strings.ToLower(file)] = true

	path := filepath.Join(dir, file+".png")
	if rel, err := filepath.Rel(dir, path); err != nil || rel != file+".png" {
		return "", fmt.Errorf("series %q: chart file would leave %s", name, dir)
	}
	return path, nil
}
