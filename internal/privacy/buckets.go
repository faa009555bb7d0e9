package privacy

import "fmt"

// AgeGroup buckets an age into one of five fixed ranges.
func AgeGroup(age int) string {
	switch {
	case age <= 14:
		return "0-14"
	case age <= 17:
		return "15-17"
	case age <= 21:
		return "18-21"
	case age <= 25:
		return "22-25"
	default:
		return "26+"
	}
}

// DecadeRange buckets a value into its ten-point range. Values of 90 and
// above share the top bucket.
func DecadeRange(v int) string {
	switch {
	case v < 0:
		v = 0
	case v >= 90:
		return "90-100"
	}
	lo := v / 10 * 10
	return fmt.Sprintf("%d-%d", lo, lo+9)
}

// PerformanceLevel names the qualitative level of an average score.
func PerformanceLevel(avg int) string {
	switch {
	case avg >= 85:
		return "elite"
	case avg >= 70:
		return "advanced"
	case avg >= 50:
		return "intermediate"
	default:
		return "developing"
	}
}
