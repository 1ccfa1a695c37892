package snapshot

// DefaultTrendWindow is the number of snapshots the trend looks back over
// when no window is configured.
const DefaultTrendWindow = 7

// trendThreshold is the minimum |delta| in actual progress that counts as
// movement; smaller changes read as FLAT.
const trendThreshold = 0.02

// ComputeTrend derives the trend from snapshots ordered most-recent-first.
// Empty and singleton histories are FLAT: there is nothing to compare yet.
func ComputeTrend(snapshots []GoalSnapshot, window int) Trend {
	if window < 1 {
		window = DefaultTrendWindow
	}
	if len(snapshots) == 0 {
		return TrendFlat
	}

	previous := window - 1
	if previous > len(snapshots)-1 {
		previous = len(snapshots) - 1
	}
	if previous == 0 {
		return TrendFlat
	}

	delta := snapshots[0].Actual - snapshots[previous].Actual
	switch {
	case delta > trendThreshold:
		return TrendUp
	case delta < -trendThreshold:
		return TrendDown
	default:
		return TrendFlat
	}
}
