package utils

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Arange returns start, start+step, ... up to but excluding stop.
// A non-positive step yields an empty slice.
func Arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return []float64{}
	}
	n := int((stop - start) / step)
	if start+float64(n)*step < stop {
		n++
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
