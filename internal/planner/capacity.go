package planner

// Signal 每周学习总时长的提示级别（仅提示，不阻止操作）
type Signal string

const (
	SignalLow   Signal = "low"
	SignalOK    Signal = "ok"
	SignalDense Signal = "dense"
)

// Thresholds 周总时长提示阈值（分钟）
type Thresholds struct {
	LowMinutes  int
	HighMinutes int
}

// DefaultThresholds 5 小时 / 10 小时
func DefaultThresholds() Thresholds {
	return Thresholds{LowMinutes: 300, HighMinutes: 600}
}

// Classify 低于 Low 为 low，高于 High 为 dense
func (t Thresholds) Classify(totalMinutes int) Signal {
	switch {
	case totalMinutes < t.LowMinutes:
		return SignalLow
	case totalMinutes > t.HighMinutes:
		return SignalDense
	default:
		return SignalOK
	}
}

// TotalMinutes 七天全部时间块时长之和
func TotalMinutes(blocks []Block) int {
	total := 0
	for _, b := range blocks {
		total += b.Minutes()
	}
	return total
}
