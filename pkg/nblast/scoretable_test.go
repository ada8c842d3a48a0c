package nblast

import "testing"

func almostEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func buildScenario1() ScoreFunc {
	// dist_upper = [0.1, 0.2, ..., 1.0], dot_upper = [0.1, 0.2, ..., 1.0],
	// cells[i] = i, row-major over (dist bin, dot bin).
	distUpper := make([]float64, 10)
	dotUpper := make([]float64, 10)
	cells := make([]float64, 100)
	for i := 0; i < 10; i++ {
		distUpper[i] = float64(i+1) * 0.1
		dotUpper[i] = float64(i+1) * 0.1
	}
	for i := range cells {
		cells[i] = float64(i)
	}
	fn, err := BuildScoreFunction(ScoreTable{DistUpper: distUpper, DotUpper: dotUpper, Cells: cells})
	if err != nil {
		panic(err)
	}
	return fn
}

func TestFindBinScenario1(t *testing.T) {
	upper := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

	cases := []struct {
		name string
		v    float64
		want int
	}{
		{"zero", 0.0, 0},
		{"exact-first-threshold", 0.1, 1},
		{"mid-first-bin", 0.15, 1},
		{"near-top", 0.95, 9},
		{"below-range", -10, 0},
		{"above-range", 10, 9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := findBin(c.v, upper)
			if got != c.want {
				t.Errorf("findBin(%v) = %d, want %d", c.v, got, c.want)
			}
		})
	}
}

func TestScoreTableScenario1(t *testing.T) {
	fn := buildScenario1()

	cases := []struct {
		name string
		dd   DistDot
		want float64
	}{
		{"origin", DistDot{0, 0}, 0},
		{"dist-0.1-dot-0", DistDot{0.1, 0}, 10},
		{"dist-0.15-dot-0", DistDot{0.15, 0}, 10},
		{"dist-0.95-dot-0", DistDot{0.95, 0}, 90},
		{"dist-below-dot-below", DistDot{-10, -10}, 0},
		{"dist-above-dot-above", DistDot{10, 10}, 99},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := fn(c.dd)
			if !almostEqual(got, c.want, 1e-12) {
				t.Errorf("fn(%+v) = %v, want %v", c.dd, got, c.want)
			}
		})
	}
}

func TestScoreTableScenario2(t *testing.T) {
	// dist_upper = [10, 20, 30, 40, 50], dot_upper 10 bins of width 0.1,
	// cells[i] = i.
	distUpper := []float64{10, 20, 30, 40, 50}
	dotUpper := make([]float64, 10)
	for i := range dotUpper {
		dotUpper[i] = float64(i+1) * 0.1
	}
	cells := make([]float64, 50)
	for i := range cells {
		cells[i] = float64(i)
	}
	fn, err := BuildScoreFunction(ScoreTable{DistUpper: distUpper, DotUpper: dotUpper, Cells: cells})
	if err != nil {
		t.Fatalf("BuildScoreFunction: %v", err)
	}

	cases := []struct {
		name string
		dd   DistDot
		want float64
	}{
		{"dist0-dot0", DistDot{0, 0}, 0},
		{"dist0-dot0.1", DistDot{0, 0.1}, 1},
		{"dist11-dot0", DistDot{11, 0}, 10},
		{"dist55-dot0", DistDot{55, 0}, 40},
		{"dist55-dot10", DistDot{55, 10}, 49},
		{"dist15-dot0.15", DistDot{15, 0.15}, 11},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := fn(c.dd)
			if !almostEqual(got, c.want, 1e-12) {
				t.Errorf("fn(%+v) = %v, want %v", c.dd, got, c.want)
			}
		})
	}
}

func TestBuildScoreFunctionDimensionMismatch(t *testing.T) {
	_, err := BuildScoreFunction(ScoreTable{
		DistUpper: []float64{1, 2},
		DotUpper:  []float64{1, 2, 3},
		Cells:     []float64{1, 2, 3, 4}, // should be 6
	})
	if err == nil {
		t.Fatal("expected error for mismatched cell count")
	}
}

func TestBuildScoreFunctionDefensiveCopy(t *testing.T) {
	distUpper := []float64{1, 2}
	dotUpper := []float64{1, 2}
	cells := []float64{1, 2, 3, 4}
	fn, err := BuildScoreFunction(ScoreTable{DistUpper: distUpper, DotUpper: dotUpper, Cells: cells})
	if err != nil {
		t.Fatalf("BuildScoreFunction: %v", err)
	}
	before := fn(DistDot{0.5, 0.5})
	cells[0] = 999 // mutate the caller's slice after construction
	after := fn(DistDot{0.5, 0.5})
	if before != after {
		t.Fatalf("score changed after mutating caller's slice: %v -> %v", before, after)
	}
}
