package player

// Status is the lifecycle state of a playback session.
type Status int

const (
	StatusIdle Status = iota
	StatusResolvingPreview
	StatusLoading
	StatusReady
	StatusPlaying
	StatusPaused
	StatusEnded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusResolvingPreview:
		return "resolving"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// pending reports whether a session is still being built.
func (s Status) pending() bool {
	return s == StatusResolvingPreview || s == StatusLoading
}
