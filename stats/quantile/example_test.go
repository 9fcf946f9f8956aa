package quantile_test

import (
	"fmt"

	"github.com/cwbudde/algo-peak/stats/quantile"
)

func ExamplePercentile() {
	flank := []float64{0.4, 0.1, 0.3, 0.2, 0.5}

	p20, err := quantile.Percentile(flank, 20)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.2f\n", p20)

	// Output:
	// 0.18
}
