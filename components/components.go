// Package components defines ECS components for the demo world.
package components

// Kind distinguishes what a world entity represents.
type Kind uint8

const (
	KindCreature Kind = iota // Moves and makes noise
	KindItem                 // Drifts, silent
	KindBeacon               // Stationary sound emitter
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	names := KindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// KindNames returns the display names for all kinds.
// The order matches the Kind constants.
func KindNames() []string {
	return []string{"Creature", "Item", "Beacon"}
}

// Identity holds the stable id and kind of an entity.
type Identity struct {
	ID   uint32
	Kind Kind
}
