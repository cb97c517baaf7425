package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelmap/pkg/cache"
	"github.com/matzehuels/labelmap/pkg/config"
	pkgio "github.com/matzehuels/labelmap/pkg/io"
	"github.com/matzehuels/labelmap/pkg/measure"
	"github.com/matzehuels/labelmap/pkg/observability"
	"github.com/matzehuels/labelmap/pkg/pipeline"
)

// layoutFlags are the inputs of the layout command.
type layoutFlags struct {
	topology     string
	labels       string
	images       string
	imageDir     string
	imageURL     string
	font         string
	sets         []string
	output       string
	noCache      bool
	refresh      bool
	cacheBackend string
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Place labels and images on a base map",
		Long: `Place labels and images on a base map.

Images are centered on their anchors. Labels are then placed in priority
order as close to their anchors as possible without overlapping anything
placed before them. Low-priority labels that would end up too far from their
anchor are dropped.

The result is the base TopoJSON with the placed objects added as a new
collection. Results are cached by input content and settings.`,
		Example: `  labelmap layout --topology us.topo.json --labels labels.geojson \
    --images images.geojson --image-dir imgs -o map.json
  labelmap layout --topology us.topo.json --labels labels.geojson --set q=0.5 --set tier.Wiki=2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVar(&f.topology, "topology", "", "base map (TopoJSON)")
	cmd.Flags().StringVar(&f.labels, "labels", "", "label requests (GeoJSON FeatureCollection)")
	cmd.Flags().StringVar(&f.images, "images", "", "image requests (GeoJSON FeatureCollection)")
	cmd.Flags().StringVar(&f.imageDir, "image-dir", "", "read image sizes from <dir>/<name>.png")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "read image sizes from <url>/imgs/<name>.png")
	cmd.Flags().StringVar(&f.font, "font", "", "TrueType/OpenType font used to measure label text")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "override a layout setting, e.g. --set imgScale=0.2 (repeatable)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", `output file, "-" for stdout (default: <labels>.layout.json)`)
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().StringVar(&f.cacheBackend, "cache-backend", "", "cache backend: file, redis or none")
	cmd.MarkFlagsMutuallyExclusive("image-dir", "image-url")
	_ = cmd.MarkFlagRequired("topology")
	_ = cmd.MarkFlagRequired("labels")

	return cmd
}

// runLayout resolves configuration and measurers, runs the pipeline and
// writes the artifact.
func (c *CLI) runLayout(ctx context.Context, stdout io.Writer, f layoutFlags) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(f.sets)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyLayoutFlags(&cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	prog := newProgress(logger)
	in, err := pipeline.LoadInputs(f.topology, f.labels, f.images)
	if err != nil {
		return err
	}
	prog.done("Loaded inputs")

	store, err := newCache(ctx, cfg.Cache, f.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, nil, logger)
	defer runner.Close()

	text, measurerID, err := textMeasurer(cfg.Images.Font)
	if err != nil {
		return err
	}
	images, imagesID := imageMetrics(cfg.Images, store)

	spinner := newSpinnerWithContext(ctx, "Placing labels...")
	spinner.Start()

	res, err := runner.Execute(ctx, in, pipeline.Options{
		Layout:     cfg.Layout,
		Text:       text,
		Images:     images,
		MeasurerID: measurerID,
		ImagesID:   imagesID,
		Refresh:    f.refresh,
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, d := range res.Discarded {
		logger.Debug("discarded label", "id", d.ID, "distance", d.Distance)
	}

	out := outputPath(f)
	if out == "-" {
		if _, err := stdout.Write(res.Data); err != nil {
			return err
		}
	} else if err := pkgio.ExportArtifact(res.Artifact, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}
	observability.Pipeline().OnArtifactWritten(ctx, res.Artifact.Len(), len(res.Data))

	if out == "-" {
		return nil
	}
	printSuccess("Layout complete")
	printFile(out)
	printStats(res.Stats.Images, res.Stats.Labels, res.Stats.Discarded, res.CacheHit)
	printNewline()
	printNextStep("Inspect", "labelmap serve "+out)
	return nil
}

// applyLayoutFlags lets explicit flags win over file and environment.
func applyLayoutFlags(cfg *config.Config, f layoutFlags) {
	if f.imageDir != "" {
		cfg.Images.Dir, cfg.Images.URL = f.imageDir, ""
	}
	if f.imageURL != "" {
		cfg.Images.URL, cfg.Images.Dir = f.imageURL, ""
	}
	if f.font != "" {
		cfg.Images.Font = f.font
	}
	if f.cacheBackend != "" {
		cfg.Cache.Backend = f.cacheBackend
	}
}

// textMeasurer returns the configured measurer and an identifier that
// changes whenever the measurements can.
func textMeasurer(fontPath string) (measure.TextMeasurer, string, error) {
	if fontPath == "" {
		return measure.NewBasicMeasurer(), pipeline.MeasurerBasic, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, "", fmt.Errorf("read font %s: %w", fontPath, err)
	}
	m, err := measure.ParseFont(data)
	if err != nil {
		return nil, "", fmt.Errorf("font %s: %w", fontPath, err)
	}
	return m, "font:" + cache.Hash(data), nil
}

// imageMetrics returns the image size source. Without a directory or URL
// every image lookup fails with NOT_FOUND.
func imageMetrics(cfg config.Images, store cache.Cache) (measure.ImageMetrics, string) {
	switch {
	case cfg.Dir != "":
		dir, err := filepath.Abs(cfg.Dir)
		if err != nil {
			dir = cfg.Dir
		}
		return measure.NewDirImages(dir), "dir:" + dir
	case cfg.URL != "":
		return measure.NewHTTPImages(cfg.URL, store), "url:" + strings.TrimSuffix(cfg.URL, "/")
	}
	return measure.StaticImages{}, pipeline.ImagesNone
}

func outputPath(f layoutFlags) string {
	if f.output != "" {
		return f.output
	}
	return strings.TrimSuffix(f.labels, filepath.Ext(f.labels)) + ".layout.json"
}
