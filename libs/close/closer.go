package close

// Closer collects teardown functions and runs them in reverse registration
// order, so components built on top of others are closed first.
type Closer struct {
	closeFns []func()
}

func NewCloser() *Closer {
	return &Closer{}
}

// Add registers a teardown function. Functions registered last run first.
func (c *Closer) Add(closeFn func()) {
	c.closeFns = append(c.closeFns, closeFn)
}

// CloseAll runs every registered teardown function, then forgets them.
// Calling it again is a no-op until new functions are registered.
func (c *Closer) CloseAll() {
	for i := len(c.closeFns) - 1; i >= 0; i-- {
		c.closeFns[i]()
	}
	c.closeFns = nil
}
