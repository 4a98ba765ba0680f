package stats

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sartorproj/gosarimax/timeseries"
)

func loadJulgamentos(t *testing.T) *timeseries.Series {
	t.Helper()
	frame, err := timeseries.LoadFrameCSV("../testdata/nead.csv", timeseries.DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load testdata: %v", err)
	}
	series, err := frame.Series("Julgamentos")
	if err != nil {
		t.Fatalf("Failed to select column: %v", err)
	}
	return series
}

func TestACF(t *testing.T) {
	// AR(1) with phi=0.8 should have slowly decaying ACF
	n := 100
	values := make([]float64, n)
	values[0] = 1
	for i := 1; i < n; i++ {
		values[i] = 0.8*values[i-1] + float64(i%7-3)*0.1
	}
	series := timeseries.New(values)

	acf := ACF(series, 10)
	if len(acf) != 11 {
		t.Fatalf("Expected 11 ACF values, got %d", len(acf))
	}
	if math.Abs(acf[0]-1.0) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}
	if acf[1] < 0.5 {
		t.Errorf("ACF at lag 1 should be strongly positive for AR(1), got %f", acf[1])
	}
	if acf[2] > acf[1] {
		t.Errorf("ACF should decay: lag1=%f, lag2=%f", acf[1], acf[2])
	}
}

func TestACFConstant(t *testing.T) {
	series := timeseries.New([]float64{3, 3, 3, 3, 3})
	if acf := ACF(series, 2); acf != nil {
		t.Errorf("Expected nil ACF for constant series, got %v", acf)
	}
}

func TestACFWithConfidence(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 12)
	}
	result := ACFWithConfidence(timeseries.New(values), 24)
	if result == nil {
		t.Fatal("ACFWithConfidence returned nil")
	}
	if math.Abs(result.ConfBounds-0.196) > 1e-9 {
		t.Errorf("Expected bounds 0.196, got %f", result.ConfBounds)
	}

	found := false
	for _, lag := range result.SignificantLags() {
		if lag == 12 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected lag 12 to be significant, got %v", result.SignificantLags())
	}
}

func TestLjungBox(t *testing.T) {
	n := 120
	ar := make([]float64, n)
	for i := 1; i < n; i++ {
		ar[i] = 0.9*ar[i-1] + float64(i%7-3)
	}

	result := LjungBox(timeseries.New(ar), 10, 0)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.Lags != 10 || result.DOF != 10 {
		t.Errorf("Expected 10 lags and 10 dof, got %d and %d", result.Lags, result.DOF)
	}
	if result.Statistic <= 0 {
		t.Errorf("Expected positive statistic, got %f", result.Statistic)
	}
	if result.WhiteNoise(0.05) {
		t.Errorf("Autocorrelated series should not look like white noise, p-value %f", result.PValue)
	}

	adjusted := LjungBox(timeseries.New(ar), 10, 4)
	if adjusted.DOF != 6 {
		t.Errorf("Expected 6 dof after fitdf, got %d", adjusted.DOF)
	}

	if LjungBox(timeseries.New([]float64{1, 2, 3}), 5, 0) != nil {
		t.Error("Expected nil for short series")
	}
}

func TestDecompose(t *testing.T) {
	n := 48
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + 2*float64(i) + 10*math.Sin(2*math.Pi*float64(i)/12)
	}
	series := timeseries.New(values)

	result, err := DecomposeWithOptions(series, 12, DecomposeOptions{})
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	if result.Period != 12 || len(result.Pattern) != 12 {
		t.Fatalf("Expected period 12 pattern, got period %d with %d values", result.Period, len(result.Pattern))
	}

	sum := 0.0
	for _, v := range result.Pattern {
		sum += v
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("Seasonal pattern should sum to zero, got %f", sum)
	}

	for i := 0; i < n; i++ {
		edge := i < 6 || i >= n-6
		if result.TrendDefined[i] == edge {
			t.Errorf("TrendDefined[%d] = %v, expected %v", i, result.TrendDefined[i], !edge)
		}
		if edge {
			if !math.IsNaN(result.Trend.Values[i]) {
				t.Errorf("Expected undefined trend at %d, got %f", i, result.Trend.Values[i])
			}
			continue
		}
		// A linear trend passes through the 2x12 moving average unchanged
		expected := 100 + 2*float64(i)
		if math.Abs(result.Trend.Values[i]-expected) > 1e-9 {
			t.Errorf("Trend[%d]: expected %f, got %f", i, expected, result.Trend.Values[i])
		}
		rebuilt := result.Trend.Values[i] + result.Seasonal.Values[i] + result.Residual.Values[i]
		if math.Abs(rebuilt-values[i]) > 1e-9 {
			t.Errorf("Components at %d do not add up: %f vs %f", i, rebuilt, values[i])
		}
	}

	// Seasonal component repeats the pattern
	for i := 0; i < n; i++ {
		if result.Seasonal.Values[i] != result.Pattern[i%12] {
			t.Errorf("Seasonal[%d] does not match pattern", i)
		}
	}
	if math.Abs(result.Pattern[3]-10) > 1e-6 {
		t.Errorf("Expected seasonal peak near 10 at position 3, got %f", result.Pattern[3])
	}
}

func TestDecomposeFillsEdges(t *testing.T) {
	values := make([]float64, 36)
	for i := range values {
		values[i] = float64(i) + 5*math.Cos(2*math.Pi*float64(i)/12)
	}
	series := timeseries.New(values)

	result, err := Decompose(series, 12)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	trend := result.Trend.Values
	for i, v := range trend {
		if math.IsNaN(v) {
			t.Fatalf("Trend has a gap at %d", i)
		}
	}
	for i := 0; i < 6; i++ {
		if trend[i] != trend[6] {
			t.Errorf("Leading edge %d: expected %f, got %f", i, trend[6], trend[i])
		}
	}
	for i := len(trend) - 6; i < len(trend); i++ {
		if trend[i] != trend[len(trend)-7] {
			t.Errorf("Trailing edge %d: expected %f, got %f", i, trend[len(trend)-7], trend[i])
		}
	}
	if result.TrendDefined[0] {
		t.Error("Filled values should still be marked as undefined")
	}
	for i := range values {
		rebuilt := trend[i] + result.Seasonal.Values[i] + result.Residual.Values[i]
		if math.Abs(rebuilt-values[i]) > 1e-9 {
			t.Errorf("Components at %d do not add up", i)
		}
	}
}

func TestDecomposeOddPeriod(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = float64(i)
	}
	result, err := DecomposeWithOptions(timeseries.New(values), 3, DecomposeOptions{})
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if !math.IsNaN(result.Trend.Values[0]) || !math.IsNaN(result.Trend.Values[11]) {
		t.Error("Expected undefined trend at both ends")
	}
	for i := 1; i < 11; i++ {
		if math.Abs(result.Trend.Values[i]-float64(i)) > 1e-12 {
			t.Errorf("Trend[%d]: expected %d, got %f", i, i, result.Trend.Values[i])
		}
	}
}

func TestDecomposeLength(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = float64(i % 12)
	}

	if _, err := Decompose(timeseries.New(values), 12); err != nil {
		t.Errorf("24 points should be enough, got %v", err)
	}

	_, err := Decompose(timeseries.New(values[:23]), 12)
	var decErr *DecompositionError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected DecompositionError, got %v", err)
	}
	if decErr.Length != 23 || decErr.Period != 12 {
		t.Errorf("Unexpected error fields: %+v", decErr)
	}

	if _, err := Decompose(timeseries.New(values), 1); !errors.As(err, &decErr) {
		t.Errorf("Expected DecompositionError for period 1, got %v", err)
	}
}

func TestDecomposeRejectsInvalidSeries(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = float64(i % 12)
	}

	withNaN := timeseries.New(append([]float64(nil), values...))
	withNaN.Values[5] = math.NaN()

	gapped := timeseries.New(append([]float64(nil), values...))
	gapped.Timestamps[10] = timeseries.AddMonths(gapped.Timestamps[10], 3)

	tests := []struct {
		name   string
		series *timeseries.Series
	}{
		{"missing value", withNaN},
		{"gap in months", gapped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decompose(tt.series, 12)
			if result != nil {
				t.Errorf("Expected no result, got pattern %v", result.Pattern)
			}
			var decErr *DecompositionError
			if !errors.As(err, &decErr) {
				t.Fatalf("Expected DecompositionError, got %v", err)
			}
			if decErr.Err == nil {
				t.Errorf("Expected the validation failure to be wrapped, got %+v", decErr)
			}
		})
	}
}

func TestDecomposeJulgamentos(t *testing.T) {
	series := loadJulgamentos(t)

	result, err := Decompose(series, DefaultPeriod)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	sum := 0.0
	for _, v := range result.Seasonal.Values[:12] {
		sum += v
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("Twelve consecutive seasonal values should sum to zero, got %f", sum)
	}

	if !result.Trend.Timestamps[0].Equal(series.Timestamps[0]) {
		t.Error("Components should keep the observed timestamps")
	}

	// January carries the recess; its seasonal effect is the lowest of the year
	jan := result.Seasonal.Values[7]
	for i, v := range result.Pattern {
		if v < jan-1e-9 {
			t.Errorf("Pattern position %d (%f) lower than January (%f)", i, v, jan)
		}
	}
}

func TestSeasonalIndex(t *testing.T) {
	series := loadJulgamentos(t)

	result, err := SeasonalIndex(series)
	if err != nil {
		t.Fatalf("SeasonalIndex failed: %v", err)
	}

	if math.Abs(result.OverallMean-20276.190476190477) > 1e-6 {
		t.Errorf("Unexpected overall mean %f", result.OverallMean)
	}

	tests := []struct {
		month    int
		count    int
		expected float64
	}{
		{1, 3, -52.49765147956788},
		{6, 4, 5.2170032879286},
		{8, 4, 21.76350399248473},
		{12, 3, -24.260920620009397},
	}
	for _, tt := range tests {
		v, ok := result.Value(time.Month(tt.month))
		if !ok {
			t.Errorf("Month %d should be defined", tt.month)
			continue
		}
		if math.Abs(v-tt.expected) > 1e-9 {
			t.Errorf("Month %d: expected %f, got %f", tt.month, tt.expected, v)
		}
		if result.Counts[tt.month-1] != tt.count {
			t.Errorf("Month %d: expected %d observations, got %d", tt.month, tt.count, result.Counts[tt.month-1])
		}
	}

	if math.Abs(result.WeightedSum()) > 1e-9 {
		t.Errorf("Weighted index sum should be zero, got %g", result.WeightedSum())
	}
	if err := result.Require(); err != nil {
		t.Errorf("All months are present, got %v", err)
	}
}

func TestSeasonalIndexMissingMonths(t *testing.T) {
	series := timeseries.NewMonthly(timeseries.Epoch, []float64{10, 12, 14, 9, 11, 13})

	result, err := SeasonalIndex(series)
	if err != nil {
		t.Fatalf("SeasonalIndex failed: %v", err)
	}

	if _, ok := result.Value(time.Month(7)); ok {
		t.Error("July has no observations and should be undefined")
	}
	if len(result.Missing()) != 6 {
		t.Errorf("Expected 6 missing months, got %v", result.Missing())
	}

	var idxErr *IndexError
	if !errors.As(result.Require(), &idxErr) {
		t.Fatal("Expected IndexError from Require")
	}
	if idxErr.Missing[0] != time.Month(7) {
		t.Errorf("Expected July first among missing months, got %v", idxErr.Missing[0])
	}
}

func TestSeasonalIndexErrors(t *testing.T) {
	var idxErr *IndexError

	_, err := SeasonalIndex(timeseries.New(nil))
	if !errors.As(err, &idxErr) {
		t.Errorf("Expected IndexError for empty series, got %v", err)
	}

	_, err = SeasonalIndex(timeseries.New([]float64{1, -1, 1, -1}))
	if !errors.As(err, &idxErr) {
		t.Errorf("Expected IndexError for zero mean, got %v", err)
	}
}

func TestKPSS(t *testing.T) {
	trend := make([]float64, 100)
	cycle := make([]float64, 100)
	for i := range trend {
		trend[i] = float64(i)
		cycle[i] = float64(i%7 - 3)
	}

	result := KPSS(trend, 0)
	if result == nil {
		t.Fatal("KPSS returned nil")
	}
	if result.Lags != 12 {
		t.Errorf("Expected 12 lags from the default rule, got %d", result.Lags)
	}
	if result.IsStationary {
		t.Errorf("Trending series should not be stationary, stat=%f", result.Statistic)
	}
	if result.PValue != 0.01 {
		t.Errorf("Expected p-value 0.01, got %f", result.PValue)
	}

	result = KPSS(cycle, 0)
	if !result.IsStationary {
		t.Errorf("Bounded cycle should be stationary, stat=%f", result.Statistic)
	}

	if KPSS([]float64{1, 2, 3}, 0) != nil {
		t.Error("Expected nil for short input")
	}
}

func TestCriteria(t *testing.T) {
	ic := Criteria(-100, 50, 4)
	if ic.AIC != 208 {
		t.Errorf("Expected AIC 208, got %f", ic.AIC)
	}
	if math.Abs(ic.AICc-(208+40.0/45)) > 1e-12 {
		t.Errorf("Unexpected AICc %f", ic.AICc)
	}
	if math.Abs(ic.BIC-(200+4*math.Log(50))) > 1e-12 {
		t.Errorf("Unexpected BIC %f", ic.BIC)
	}

	if !math.IsInf(Criteria(-10, 5, 4).AICc, 1) {
		t.Error("AICc should be infinite when there are too few observations")
	}
}
