package gtext

// Cached uniform slots. Each slot starts unset and remembers the last
// value pushed to the device; update reports whether the new value
// actually needs a device call.

type cachedInt struct {
	set bool
	v   int
}

func (c *cachedInt) update(v int) bool {
	if c.set && c.v == v {
		return false
	}
	c.set = true
	c.v = v
	return true
}

type cachedVec2 struct {
	set  bool
	x, y float32
}

func (c *cachedVec2) update(x, y float32) bool {
	if c.set && c.x == x && c.y == y {
		return false
	}
	c.set = true
	c.x = x
	c.y = y
	return true
}

type cachedVec4 struct {
	set bool
	v   [4]float32
}

func (c *cachedVec4) update(v [4]float32) bool {
	if c.set && c.v == v {
		return false
	}
	c.set = true
	c.v = v
	return true
}
