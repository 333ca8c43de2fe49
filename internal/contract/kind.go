package contract

// Kind is the condition kind a guard checks.
type Kind uint8

const (
	Precondition Kind = iota
	Postcondition
	Invariant
)

func (k Kind) String() string {
	switch k {
	case Precondition:
		return "precondition"
	case Postcondition:
		return "postcondition"
	case Invariant:
		return "invariant"
	}
	return "unknown"
}
