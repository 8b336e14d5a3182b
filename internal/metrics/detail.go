package metrics

// DetailLevel controls how many quantiles a summary tracks.
type DetailLevel int

const (
	// Basic summaries track the median only.
	Basic DetailLevel = iota
	// Advanced summaries track the median, p90 and p99.
	Advanced
)

func (l DetailLevel) String() string {
	switch l {
	case Basic:
		return "basic"
	case Advanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// objectives returns the quantile set with its tolerated error per quantile.
func (l DetailLevel) objectives() map[float64]float64 {
	if l == Advanced {
		return map[float64]float64{
			0.5:  0.05,
			0.9:  0.01,
			0.99: 0.001,
		}
	}
	return map[float64]float64{0.5: 0.05}
}
