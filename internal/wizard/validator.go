package wizard

import (
	"fmt"

	"github.com/homilybuild/homily/internal/domain"
)

// Decision is the outcome of CheckTransition.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	// Blocking is the id of the step whose requirement failed, or 0.
	Blocking int `json:"blocking,omitempty"`
}

// CheckTransition decides whether the wizard may move from current to
// target. Moving back or staying put is always allowed. Moving forward
// requires every step being left behind, current included, to have its
// required field filled.
func CheckTransition(steps Steps, current, target int, record domain.DraftRecord) Decision {
	if _, ok := steps.Get(target); !ok {
		return Decision{Reason: fmt.Sprintf("step %d does not exist", target)}
	}
	if target <= current {
		return Decision{Allowed: true}
	}
	for id := max(current, 1); id < target; id++ {
		def, _ := steps.Get(id)
		if def.RequiredField == "" || record.Filled(def.RequiredField) {
			continue
		}
		return Decision{
			Reason:   fmt.Sprintf("%s is required before continuing", def.RequiredField.Label()),
			Blocking: id,
		}
	}
	return Decision{Allowed: true}
}
