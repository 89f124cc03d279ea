package profile

// Count is one entry of an ordered histogram.
type Count struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// counter is a histogram that remembers the order tags were first seen in.
type counter struct {
	order  []string
	counts map[string]int64
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int64)}
}

func (c *counter) inc(tag string) {
	if _, ok := c.counts[tag]; !ok {
		c.order = append(c.order, tag)
	}
	c.counts[tag]++
}

// top returns the tag with the highest count. Ties go to the tag seen first.
func (c *counter) top() (string, int64, bool) {
	var (
		best  string
		count int64
		found bool
	)
	for _, tag := range c.order {
		if n := c.counts[tag]; !found || n > count {
			best, count, found = tag, n, true
		}
	}
	return best, count, found
}

func (c *counter) total() int64 {
	var sum int64
	for _, n := range c.counts {
		sum += n
	}
	return sum
}

func (c *counter) entries() []Count {
	out := make([]Count, len(c.order))
	for i, tag := range c.order {
		out[i] = Count{Tag: tag, Count: c.counts[tag]}
	}
	return out
}

func (c *counter) asMap() map[string]int64 {
	out := make(map[string]int64, len(c.counts))
	for tag, n := range c.counts {
		out[tag] = n
	}
	return out
}
