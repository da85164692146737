package pose

// DefaultHistoryCapacity is the default depth of the smoothing buffer.
// Five frames is ~165ms at 30fps: enough to damp estimator jitter without
// visibly lagging a fast drive.
const DefaultHistoryCapacity = 5

// History is a bounded FIFO of the most recent smoothed poses, used only by
// the smoothing filter. It is owned by whoever drives the per-frame loop;
// the smoother reads it and never retains a reference across calls.
type History struct {
	poses    []*Pose
	capacity int
	head     int // Next write position
	size     int // Current number of poses stored
}

// NewHistory creates a pose history with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		poses:    make([]*Pose, capacity),
		capacity: capacity,
	}
}

// Add appends a pose, evicting the oldest entry when at capacity.
func (h *History) Add(p *Pose) {
	h.poses[h.head] = p
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Previous returns the pose n steps back from the most recent.
// Previous(1) is the most recently added pose. Returns nil if the requested
// entry does not exist.
func (h *History) Previous(n int) *Pose {
	if n < 1 || n > h.size {
		return nil
	}
	idx := (h.head - n + h.capacity) % h.capacity
	return h.poses[idx]
}

// Size returns the current number of poses stored.
func (h *History) Size() int {
	return h.size
}

// Capacity returns the maximum number of poses that can be stored.
func (h *History) Capacity() int {
	return h.capacity
}

// Clear removes all poses.
func (h *History) Clear() {
	for i := range h.poses {
		h.poses[i] = nil
	}
	h.head = 0
	h.size = 0
}

// All returns the stored poses from oldest to newest.
func (h *History) All() []*Pose {
	if h.size == 0 {
		return nil
	}
	out := make([]*Pose, h.size)
	for i := 0; i < h.size; i++ {
		idx := (h.head - h.size + i + h.capacity) % h.capacity
		out[i] = h.poses[idx]
	}
	return out
}
