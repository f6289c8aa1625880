package entitlement

// Flag represents a single entitlement decision
type Flag uint

const (
	WriteNote Flag = 1 << iota
	ManageNotes
	Invite
	Upgrade
	UpgradeBanner
	Pro
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{WriteNote, "write_note"},
	{ManageNotes, "manage_notes"},
	{Invite, "invite"},
	{Upgrade, "upgrade"},
	{UpgradeBanner, "upgrade_banner"},
	{Pro, "pro"},
}

// String returns the snake case name of the flag
func (flag Flag) String() string {
	for _, entry := range flagNames {
		if entry.flag == flag {
			return entry.name
		}
	}
	return "unknown"
}

// Set represents the container of entitlement decisions.
// It provides methods Has, With and Without to check, set and unset certain flags.
type Set uint

// EmptySet provides a set with no entitlements granted
const EmptySet Set = 0

// Has checks if the set has all the given flags set
func (cur Set) Has(first Flag, others ...Flag) bool {
	if uint(cur)&uint(first) == 0 {
		return false
	}
	for _, other := range others {
		if uint(cur)&uint(other) == 0 {
			return false
		}
	}
	return true
}

// With returns a new set with all given and current flags set
func (cur Set) With(first Flag, others ...Flag) Set {
	val := uint(cur) | uint(first)
	for _, other := range others {
		val |= uint(other)
	}
	return Set(val)
}

// Without returns a new set with the current and without the given flags set
func (cur Set) Without(first Flag, others ...Flag) Set {
	val := uint(cur) &^ uint(first)
	for _, other := range others {
		val &^= uint(other)
	}
	return Set(val)
}

// Names lists the names of all flags set, in declaration order
func (cur Set) Names() []string {
	names := make([]string, 0, len(flagNames))
	for _, entry := range flagNames {
		if cur.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}
	return names
}
