package payment

import "math"

// Split divides a gross amount between the platform and the event owner.
// The platform share is the commission rounded half up; the owner gets the
// remainder, so the two shares always sum to the gross amount.
func Split(amountCents int64, commissionRate float64) (platformCents int64, ownerCents int64) {
	if amountCents <= 0 {
		return 0, 0
	}
	if commissionRate < 0 {
		commissionRate = 0
	}
	if commissionRate > 1 {
		commissionRate = 1
	}

	platformCents = int64(math.Floor(float64(amountCents)*commissionRate + 0.5))
	if platformCents > amountCents {
		platformCents = amountCents
	}
	ownerCents = amountCents - platformCents
	return platformCents, ownerCents
}
