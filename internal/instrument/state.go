package instrument

// State is the lifecycle of a method inside one pass.
type State uint8

const (
	Discovered State = iota
	Skipped
	Instrumented
	PartiallyInstrumented // at least one guard is an erroneous placeholder
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Skipped:
		return "skipped"
	case Instrumented:
		return "instrumented"
	case PartiallyInstrumented:
		return "partially-instrumented"
	}
	return "unknown"
}

// SkipReason says why a discovered method was left alone.
type SkipReason uint8

const (
	NotSkipped SkipReason = iota
	SkipAbstract
	SkipPrivate
	SkipOldAccessor
	SkipUncontracted
)

func (r SkipReason) String() string {
	switch r {
	case NotSkipped:
		return ""
	case SkipAbstract:
		return "abstract"
	case SkipPrivate:
		return "private"
	case SkipOldAccessor:
		return "old accessor"
	case SkipUncontracted:
		return "no contract"
	}
	return "unknown"
}
