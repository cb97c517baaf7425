package placement_test

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/matzehuels/labelmap/pkg/measure"
	"github.com/matzehuels/labelmap/pkg/placement"
	"github.com/matzehuels/labelmap/pkg/scale"
)

func ExampleEngine_Run() {
	cfg := placement.DefaultConfig(scale.Options{"b": 0, "m": 1, "q": 0})
	cfg.ImgScale = 1

	eng, err := placement.New(cfg,
		measure.AspectMeasurer{Ratio: 0.5},
		measure.StaticImages{"flag": {Width: 20, Height: 10}},
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	images := []placement.Request{placement.NewImage("flag", orb.Point{0, 0})}
	labels := []placement.Request{{
		ID:       "City-Springfield",
		Kind:     placement.KindLabel,
		Anchor:   orb.Point{0, 0},
		Content:  placement.Content{Name: "springfield"},
		RawScale: 4,
	}}

	res, err := eng.Run(context.Background(), images, labels)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, g := range res.Placed {
		fmt.Printf("%s %s at (%g, %g)\n", g.Kind, g.ID, g.Pos.X, g.Pos.Y)
	}
	// Output:
	// image flag at (-10, -5)
	// label City-Springfield at (-11, -10)
}
