package savgol_test

import (
	"fmt"

	"github.com/cwbudde/algo-peak/dsp/filter/savgol"
)

func ExampleFilter_Coefficients() {
	f, err := savgol.New(5, 2)
	if err != nil {
		panic(err)
	}

	for _, c := range f.Coefficients() {
		fmt.Printf("%.0f ", c*35)
	}
	fmt.Println()

	// Output:
	// -3 12 17 12 -3
}

func ExampleSmooth() {
	x := []float64{1, 4, 9, 16, 25, 36, 49}

	y, err := savgol.Smooth(x, 5, 2)
	if err != nil {
		panic(err)
	}

	for _, v := range y {
		fmt.Printf("%.1f ", v)
	}
	fmt.Println()

	// Output:
	// 1.0 4.0 9.0 16.0 25.0 36.0 49.0
}
