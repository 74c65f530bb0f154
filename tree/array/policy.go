package array

// Policy decides the capacity and front reserve when an array must grow.
type Policy int

const (
	// GrowExact grows to exactly the needed capacity.
	GrowExact Policy = iota

	// GrowFixed never reallocates; exceeding the capacity is an invariant
	// violation. Data may still shift inside the buffer.
	GrowFixed

	// GrowDoubled doubles the needed capacity and keeps the slack at the back.
	GrowDoubled

	// GrowDoubledFront doubles and keeps the slack at the front, for
	// queue-like use with AppendFront.
	GrowDoubledFront

	// GrowDoubledCenter doubles and splits the slack between both ends.
	GrowDoubledCenter
)

func (p Policy) String() string {
	switch p {
	case GrowExact:
		return "exact"
	case GrowFixed:
		return "fixed"
	case GrowDoubled:
		return "doubled"
	case GrowDoubledFront:
		return "doubled-front"
	case GrowDoubledCenter:
		return "doubled-center"
	default:
		return "unknown"
	}
}

// initialFront returns the front reserve a new array starts with.
func (p Policy) initialFront(capacity, num int) int {
	switch p {
	case GrowDoubledFront:
		return capacity - num
	case GrowDoubledCenter:
		return (capacity - num) / 2
	default:
		return 0
	}
}

// layout returns the capacity and front reserve for an array of num
// elements that needs needFront free slots before and needBack after it.
// ok is false when the policy refuses to grow.
func (p Policy) layout(capacity, num, needFront, needBack int) (newCap, front int, ok bool) {
	minNeeded := num + needFront + needBack
	switch p {
	case GrowExact:
		return minNeeded, needFront, true
	case GrowFixed:
		if minNeeded > capacity {
			return capacity, 0, false
		}
		return capacity, needFront, true
	case GrowDoubled:
		return max(2*minNeeded, capacity), needFront, true
	case GrowDoubledFront:
		newCap = max(2*minNeeded, capacity)
		return newCap, newCap - num - needBack, true
	case GrowDoubledCenter:
		newCap = max(2*minNeeded, capacity)
		return newCap, needFront + (newCap-minNeeded)/2, true
	default:
		return capacity, 0, false
	}
}
