package app

// AdmissionPolicy decides whether one more occupant may enter a room.
// It runs inside the room's sequenced join unit, so the live count it
// sees cannot race another joiner.
type AdmissionPolicy interface {
	Admit(live, maxUsers int) bool
}

// CapacityPolicy admits while the live occupant count is below the
// durable room's cap.
type CapacityPolicy struct{}

func (CapacityPolicy) Admit(live, maxUsers int) bool {
	return live < maxUsers
}
