package traverse

import "weave/internal/ast"

// Context visits the paths of one child field. It keeps an explicit stack of
// frames: the sibling queue at the bottom and, above it, priority frames with
// nodes produced by rewrites of the sibling just visited.
type Context struct {
	sess   *Session
	disp   *Dispatcher
	frames []*frame
}

type frame struct {
	paths    []*Path
	next     int
	priority []*Path
	queued   map[*ast.Node]bool
	visited  map[*ast.Node]bool
	pushed   []*Path
}

func newContext(s *Session, d *Dispatcher) *Context {
	return &Context{sess: s, disp: d}
}

func (c *Context) push(paths []*Path) {
	c.frames = append(c.frames, &frame{
		paths:   paths,
		queued:  make(map[*ast.Node]bool),
		visited: make(map[*ast.Node]bool, len(paths)),
	})
}

func (c *Context) pop() {
	n := len(c.frames) - 1
	f := c.frames[n]
	for _, p := range f.pushed {
		p.popContext()
	}
	c.frames[n] = nil
	c.frames = c.frames[:n]
}

func (c *Context) unwind(depth int) {
	for len(c.frames) >= depth {
		c.pop()
	}
}

// maybeQueue appends p to the top frame; priority paths run right after the
// path currently being visited. A node is queued at most once per frame.
func (c *Context) maybeQueue(p *Path, priority bool) {
	if len(c.frames) == 0 {
		return
	}
	f := c.frames[len(c.frames)-1]
	if p.Node != nil {
		if f.queued[p.Node] {
			return
		}
		f.queued[p.Node] = true
	}
	if priority {
		f.priority = append(f.priority, p)
		return
	}
	f.paths = append(f.paths, p)
}

// visitQueue visits paths in order. After each path the priority paths it
// produced are visited to completion before the next sibling.
func (c *Context) visitQueue(queue []*Path) (bool, error) {
	if len(queue) == 0 {
		return false, nil
	}
	c.push(queue)
	base := len(c.frames)
	for len(c.frames) >= base {
		f := c.frames[len(c.frames)-1]
		if f.next >= len(f.paths) {
			c.pop()
			continue
		}
		p := f.paths[f.next]
		f.next++

		stop, err := c.visitOne(f, p)
		if err != nil || stop {
			c.unwind(base)
			return stop, err
		}
		if len(f.priority) > 0 {
			pending := f.priority
			f.priority = nil
			c.push(pending)
		}
	}
	return false, nil
}

func (c *Context) visitOne(f *frame, p *Path) (bool, error) {
	p.Resync()
	if p.current() != c {
		p.pushContext(c)
		f.pushed = append(f.pushed, p)
	}
	if p.removed || p.lost || p.Node == nil {
		return false, nil
	}
	if f.visited[p.Node] {
		return false, nil
	}
	f.visited[p.Node] = true
	p.shouldSkip, p.shouldStop = false, false
	return p.visit(c.disp)
}
