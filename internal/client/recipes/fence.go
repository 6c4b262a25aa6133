package recipes

// fence assigns monotonically increasing sequence numbers per logical
// resource and rejects completions older than the newest one already
// applied. In-flight requests are never cancelled, so a slow page-1 fetch
// may resolve after a fast page-2 fetch; the fence keeps the late arrival
// from clobbering newer data.
type fence struct {
	next    map[string]uint64
	applied map[string]uint64
}

func newFence() *fence {
	return &fence{
		next:    make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// begin reserves the next sequence number for key.
func (f *fence) begin(key string) uint64 {
	f.next[key]++
	return f.next[key]
}

// commit reports whether a completion with the given sequence may be
// applied, recording it as the newest if so.
func (f *fence) commit(key string, seq uint64) bool {
	if seq < f.applied[key] {
		return false
	}
	f.applied[key] = seq
	return true
}
