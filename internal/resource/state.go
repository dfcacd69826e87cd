package resource

// State is the declared presence of a resource.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// Valid reports whether s is one of the recognized states. The empty string
// is not valid; callers default it to StatePresent before validation.
func (s State) Valid() bool {
	return s == StatePresent || s == StateAbsent
}
