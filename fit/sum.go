package fit

// KahanSum is a compensated running sum.
type KahanSum struct {
	Sum float64
	c   float64
}

// Add accumulates x.
func (k *KahanSum) Add(x float64) {
	y := x - k.c
	t := k.Sum + y
	k.c = (t - k.Sum) - y
	k.Sum = t
}

// Sum returns the compensated sum of x. Returns 0 for an empty slice.
func Sum(x []float64) float64 {
	var k KahanSum
	for _, v := range x {
		k.Add(v)
	}

	return k.Sum
}

// Mean returns the compensated arithmetic mean of x.
// Returns 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return Sum(x) / float64(len(x))
}
