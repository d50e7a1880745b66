package outbound

import "time"

// Recorder receives operational measurements from the auction handler
type Recorder interface {
	// ObserveOperation records one handler call and its outcome label
	ObserveOperation(operation, outcome string)

	// ObservePersist records one snapshot write
	ObservePersist(duration time.Duration, err error)

	// SetState records the current registry sizes
	SetState(lots, openLots, participants int)
}

// NopRecorder discards all measurements
type NopRecorder struct{}

func (NopRecorder) ObserveOperation(string, string)     {}
func (NopRecorder) ObservePersist(time.Duration, error) {}
func (NopRecorder) SetState(int, int, int)              {}
