package rental

// State is derived from the persisted flags.
type State string

const (
	StateActive         State = "active"
	StateActiveNotified State = "active_notified"
	// StateLapsed is a rental switched off by the deduction sweep for non-payment.
	StateLapsed  State = "lapsed"
	StateExpired State = "expired"
	StateZombie  State = "zombie"
)

func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no transition may leave s.
func (s State) IsTerminal() bool {
	return s == StateZombie
}
