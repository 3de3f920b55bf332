package wizard

// State is a step of the import wizard.
type State int

const (
	// Idle is the starting state; nothing has been discovered yet.
	Idle State = iota

	// Discovering means installations were found and one can be selected.
	Discovering

	// Parsing means the selected installation's mods are loaded and the
	// user is choosing which to import.
	Parsing

	// Transferring means an import is running.
	Transferring

	// Reviewed means an import finished and its result is available.
	Reviewed
)

var stateNames = map[State]string{
	Idle:         "idle",
	Discovering:  "discovering",
	Parsing:      "parsing",
	Transferring: "transferring",
	Reviewed:     "reviewed",
}

// String returns the state's name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// beforeTransfer reports whether the wizard can still be cancelled.
func (s State) beforeTransfer() bool {
	return s == Idle || s == Discovering || s == Parsing
}
