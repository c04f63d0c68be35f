package searcher

import "math"

type uct struct {
	exploration float64
	numerator   float64
}

func newUCT(exploration float64, N float64) *uct {
	if N < 1 {
		panic("N cannot be less than 1")
	}
	return &uct{exploration: exploration, numerator: 2 * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n < 1 {
		panic("n cannot be less than 1")
	}
	// UCT = q/n + C*sqrt(2*ln(N)/n)
	return q/n + u.exploration*math.Sqrt(u.numerator/n)
}
