package goal

import "time"

// Horizon is the planning range a goal spans.
type Horizon string

const (
	HorizonMonth   Horizon = "MONTH"
	HorizonQuarter Horizon = "QUARTER"
	HorizonYear    Horizon = "YEAR"
)

// Status represents the lifecycle state of a goal.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusArchived  Status = "ARCHIVED"
)

// KeyResultType selects the evaluation strategy for a key result.
type KeyResultType string

const (
	TypeAccumulative KeyResultType = "ACCUMULATIVE"
	TypeHabit        KeyResultType = "HABIT"
	TypeMilestone    KeyResultType = "MILESTONE"
)

// Goal is a user's measurable objective over a date range. Dates are civil
// days ("2006-01-02").
type Goal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Horizon   Horizon   `json:"horizon"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyResult is a typed, measurable target under a goal. CurrentValue is
// derived state: it moves only through the evaluation strategies, never
// through a user-facing edit path.
type KeyResult struct {
	ID           string        `json:"id"`
	GoalID       string        `json:"goal_id"`
	Title        string        `json:"title"`
	Type         KeyResultType `json:"type"`
	StartValue   float64       `json:"start_value"`
	TargetValue  float64       `json:"target_value"`
	CurrentValue float64       `json:"current_value"`
	Weight       float64       `json:"weight"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Progress returns currentValue/targetValue, or 0 for a zero target.
func (kr KeyResult) Progress() float64 {
	if kr.TargetValue == 0 {
		return 0
	}
	return kr.CurrentValue / kr.TargetValue
}

// MeanProgress averages key result progress, 0 when there are none.
func MeanProgress(krs []KeyResult) float64 {
	if len(krs) == 0 {
		return 0
	}
	var sum float64
	for _, kr := range krs {
		sum += kr.Progress()
	}
	return sum / float64(len(krs))
}

// WeightedProgress averages key result progress weighted by each result's
// weight, 0 when there are none or all weights are zero.
func WeightedProgress(krs []KeyResult) float64 {
	var sum, total float64
	for _, kr := range krs {
		sum += kr.Weight * kr.Progress()
		total += kr.Weight
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
