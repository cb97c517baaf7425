package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/io"
	"github.com/matzehuels/labelmap/pkg/topology"
)

// hitCommand creates the hit command.
func (c *CLI) hitCommand() *cobra.Command {
	var (
		collection string
		all        bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "hit <artifact.json> <x> <y>",
		Short: "Show the placed object under a point",
		Long: `Show the placed object under a point of a layout artifact.

When objects overlap at the point, the first one in the artifact is the one
a click acts on. Use --all to list every object under the point.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			art, err := io.ImportArtifact(args[0], collection)
			if err != nil {
				return fmt.Errorf("load artifact %s: %w", args[0], err)
			}

			hits := art.Hit(x, y)
			if !all && len(hits) > 1 {
				hits = hits[:1]
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(hits)
			}

			if len(hits) == 0 {
				printInfo("Nothing at (%s, %s)", fmtCoord(x), fmtCoord(y))
				return nil
			}
			for _, o := range hits {
				printObject(o)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", topology.DefaultCollection, "name of the placed-object collection")
	cmd.Flags().BoolVar(&all, "all", false, "list every object under the point")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the objects as JSON")

	return cmd
}

func parsePoint(xs, ys string) (float64, float64, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "x must be a number, got %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "y must be a number, got %q", ys)
	}
	return x, y, nil
}

// printObject prints one placed object with its link.
func printObject(o topology.Object) {
	p := o.Properties
	title := o.ID
	if p.Name != "" && p.Name != o.ID {
		title += " " + StyleDim.Render(p.Name)
	}
	fmt.Println(StyleNumber.Render(iconPin) + " " + StyleTitle.Render(title) + " " + StyleDim.Render(p.Kind))
	if p.Caption != "" {
		printKeyValue("caption", p.Caption)
	}
	if p.URL != "" {
		printKeyValue("url", StyleLink.Render(p.URL))
	}
	pos := p.Pos
	printKeyValue("box", fmt.Sprintf("%s,%s %s×%s",
		fmtCoord(pos.X), fmtCoord(pos.Y), fmtCoord(pos.W), fmtCoord(pos.TH)))
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
