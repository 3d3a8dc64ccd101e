package keyplayer

// State is the playback state of a Player.
type State int

const (
	// StateIdle means no run is active; Start is accepted.
	StateIdle State = iota
	// StatePlaying means a run is active; Start is rejected.
	StatePlaying
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// IsIdle checks if the player is idle.
func (s State) IsIdle() bool {
	return s == StateIdle
}

// IsPlaying checks if a run is active.
func (s State) IsPlaying() bool {
	return s == StatePlaying
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
