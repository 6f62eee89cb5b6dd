package sim

import "degradesim/internal/model"

// Observe derives the sensor signal from the current states. RED wins if any
// component is at or above its threshold, YELLOW if any is degraded.
func Observe(states []int, comps []model.ComponentParameter) model.SensorSignal {
	sig := model.SignalGreen
	for i, s := range states {
		if s >= comps[i].K {
			return model.SignalRed
		}
		if s > 0 {
			sig = model.SignalYellow
		}
	}
	return sig
}

// isFailure reports whether an observed signal is a failure event.
func isFailure(sig model.SensorSignal) bool {
	return sig == model.SignalRed
}

// shouldMaintain is the reactive policy: intervene exactly when a failure is
// observed. No intervention happens on YELLOW, so false alarms cannot occur.
func shouldMaintain(sig model.SensorSignal) bool {
	return isFailure(sig)
}
