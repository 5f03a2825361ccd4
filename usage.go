package treecache

// State is the per-cycle usage state of a cached item.
//
// Items enter as Fresh, become Used when marked, and turn Stale when usage
// is reset without being marked again. A Stale item with no cached children
// is reported as Evictable and is a candidate for the next unload pass.
type State uint8

const (
	// StateFresh is an item added since the last reset and not yet marked.
	StateFresh State = iota
	// StateUsed is an item marked used in the current cycle.
	StateUsed
	// StateStale is an item not marked since the last reset.
	StateStale
	// StateEvictable is a stale item with no cached children.
	StateEvictable
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateUsed:
		return "used"
	case StateStale:
		return "stale"
	case StateEvictable:
		return "evictable"
	default:
		return "unknown"
	}
}

// InUse reports whether the state pins the item against eviction.
func (s State) InUse() bool {
	return s == StateFresh || s == StateUsed
}

// record wraps a cached item with its usage bookkeeping.
// Identity is always the wrapped item's.
type record[T any] struct {
	item       T
	state      State
	lastAccess uint64
	onEvict    func(T)
}

// markUsed moves the record to Used and refreshes its access key.
// Returns true if the record was not in use before.
func (r *record[T]) markUsed(tick uint64) bool {
	was := r.state.InUse()
	r.state = StateUsed
	r.lastAccess = tick
	return !was
}

// markStale moves an in-use record to Stale.
// Returns true if the record was in use before.
func (r *record[T]) markStale() bool {
	if !r.state.InUse() {
		return false
	}
	r.state = StateStale
	return true
}

// dispose runs and drops the disposal callback.
func (r *record[T]) dispose() {
	if cb := r.onEvict; cb != nil {
		r.onEvict = nil
		cb(r.item)
	}
}
