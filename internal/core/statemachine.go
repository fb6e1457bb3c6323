package core

// State is the position of a record in the accountability lifecycle:
// NOT_SET -> ACTIVE (self-transitions on extension) -> COMPLETED.
// No transition leaves COMPLETED.
type State string

const (
	StateNotSet    State = "NOT_SET"
	StateActive    State = "ACTIVE"
	StateCompleted State = "COMPLETED"
)

// Action is a requested transition.
type Action string

const (
	ActionSetEta       Action = "set_eta"
	ActionExtendEta    Action = "extend_eta"
	ActionMarkComplete Action = "mark_complete"
)

// ComputeStatus derives the traffic-light status from the strike count.
// Total over non-negative inputs and monotonic in strikeCount:
// 0 strikes is GREEN, under the budget is ORANGE, at or over is RED.
func ComputeStatus(strikeCount, maxStrikes int) Status {
	switch {
	case strikeCount == 0:
		return StatusGreen
	case strikeCount < maxStrikes:
		return StatusOrange
	default:
		return StatusRed
	}
}

// CanTransition reports whether action is legal from state. Reaching
// maxStrikes only disables further extension; the task stays ACTIVE and
// overdue until explicitly completed.
func CanTransition(state State, strikeCount, maxStrikes int, action Action) bool {
	switch action {
	case ActionSetEta:
		return state == StateNotSet
	case ActionExtendEta:
		return state == StateActive && strikeCount < maxStrikes
	case ActionMarkComplete:
		return state == StateNotSet || state == StateActive
	default:
		return false
	}
}
