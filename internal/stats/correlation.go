package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// Correlation returns the Pearson correlation of keyA and keyB. The two series
// are extracted independently, then paired by position and truncated to the
// shorter one. Fewer than two pairs or a constant series yields 0.
func Correlation(records []models.Record, keyA, keyB string) float64 {
	a := ExtractSeries(records, keyA)
	b := ExtractSeries(records, keyB)
	n := min(len(a), len(b))
	if n < 2 {
		return 0
	}
	a, b = a[:n], b[:n]

	r, err := mstats.Correlation(a, b)
	if err != nil {
		return 0
	}
	r = finite(r)
	return math.Max(-1, math.Min(1, r))
}

// CorrelationSignificance returns the two-tailed p-value for a Pearson r over n
// pairs, using Student's t with n-2 degrees of freedom. It returns 1 when the
// test is undefined.
func CorrelationSignificance(r float64, n int) float64 {
	if n < 3 || math.IsNaN(r) {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	return math.Max(0, math.Min(1, p))
}

// PairCount returns how many positional pairs Correlation uses for keyA and keyB.
func PairCount(records []models.Record, keyA, keyB string) int {
	return min(len(ExtractSeries(records, keyA)), len(ExtractSeries(records, keyB)))
}

// Regression is a least-squares trend line y = Slope*x + Intercept.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"rSquared"`
	Points    int     `json:"points"`
}

// Predict returns the point on the trend line at x.
func (r *Regression) Predict(x float64) [2]float64 {
	return [2]float64{x, r.Slope*x + r.Intercept}
}

// Equation renders the trend line, e.g. "y = 1.50x + 2.00".
func (r *Regression) Equation() string {
	sign := "+"
	intercept := r.Intercept
	if intercept < 0 {
		sign = "-"
		intercept = -intercept
	}
	return fmt.Sprintf("y = %.2fx %s %.2f", r.Slope, sign, intercept)
}

// LinearRegression fits yKey against the record index. Records whose y is not
// numeric are skipped but keep their original index as x, so gaps in the data
// do not compress the axis. It returns nil with fewer than two valid points.
func LinearRegression(records []models.Record, yKey string) *Regression {
	xs := make([]float64, 0, len(records))
	ys := make([]float64, 0, len(records))
	for i, r := range records {
		if y, ok := r.Number(yKey); ok {
			xs = append(xs, float64(i))
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return nil
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return nil
	}
	return &Regression{
		Slope:     beta,
		Intercept: alpha,
		RSquared:  finite(stat.RSquared(xs, ys, nil, alpha, beta)),
		Points:    len(xs),
	}
}
