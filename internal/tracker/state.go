package tracker

import "errors"

// State is a device lifecycle state.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Running
	Stopped
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrNotReady     = errors.New("device is not ready")
	ErrNotRunning   = errors.New("device is not running")
	ErrNotLoading   = errors.New("device is not loading")
	ErrStopped      = errors.New("device is stopped")
	ErrUnknownScene = errors.New("unknown scene")
	ErrUnknownToken = errors.New("unknown token")
)
