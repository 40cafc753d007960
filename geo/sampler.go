package geo

import "go-medalert/types"

// PathSampler walks a route polyline taking every stride-th point, so
// the orchestrator can replay a leg as discrete position updates. The
// final point is always emitted, a sampler can be Reset and replayed,
// and points come out in polyline order.
type PathSampler struct {
	path   []types.Coordinate
	stride int
	pos    int
}

// NewPathSampler builds a sampler over path. A stride below 1 is
// treated as 1.
func NewPathSampler(path []types.Coordinate, stride int) *PathSampler {
	if stride < 1 {
		stride = 1
	}
	return &PathSampler{path: path, stride: stride}
}

// Next returns the next sampled coordinate. ok is false once the path
// is exhausted.
func (s *PathSampler) Next() (c types.Coordinate, ok bool) {
	if s.pos >= len(s.path) {
		return types.Coordinate{}, false
	}
	c = s.path[s.pos]
	if s.pos+s.stride >= len(s.path) && s.pos != len(s.path)-1 {
		// jump to the terminus so the unit always reaches it
		s.pos = len(s.path) - 1
	} else {
		s.pos += s.stride
	}
	return c, true
}

// Reset rewinds the sampler to the start of the path.
func (s *PathSampler) Reset() { s.pos = 0 }
