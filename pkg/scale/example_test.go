package scale_test

import (
	"fmt"

	"github.com/matzehuels/labelmap/pkg/scale"
)

func ExampleSize() {
	opts := scale.Options{
		"b":     1,   // base height
		"m":     4,   // global multiplier
		"q":     0.5, // rounding quantum
		"bCity": 3,   // cities start larger
		"m-CA":  2,   // labels in CA are scaled twice as much
	}

	state, _ := scale.Size(opts, "State-TX", 1)
	city, _ := scale.Size(opts, "City-TX", 1)
	scaled, _ := scale.Size(opts, "City-CA", 0.6)

	fmt.Println(state, city, scaled)
	// Output: 5 7 8
}
