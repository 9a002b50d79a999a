// Package bytebuf implements a growable byte arena with an explicit
// consumed/unconsumed split, used to accumulate partial network data.
package bytebuf

// baseline is the smallest capacity ever allocated; growth doubles
// from here, so every capacity is a power-of-two multiple of it.
const baseline = 32

// Buffer holds bytes in the window [begin, begin+length). Push appends
// after the window, Pop advances its start. It is owned by exactly one
// connection loop and is not safe for concurrent use.
type Buffer struct {
	mem    []byte
	begin  int
	length int
}

func New() *Buffer {
	return &Buffer{mem: make([]byte, baseline)}
}

// Len reports the number of unconsumed bytes.
func (b *Buffer) Len() int { return b.length }

// Cap reports the current capacity.
func (b *Buffer) Cap() int { return len(b.mem) }

// Bytes returns the unconsumed window. The slice aliases the buffer
// and is invalidated by the next Push or Pop.
func (b *Buffer) Bytes() []byte {
	return b.mem[b.begin : b.begin+b.length]
}

// Push appends p after the unconsumed window, growing the buffer when
// the free tail is too small.
func (b *Buffer) Push(p []byte) {
	if free := len(b.mem) - b.begin - b.length; free < len(p) {
		b.grow(len(p))
	}

	copy(b.mem[b.begin+b.length:], p)
	b.length += len(p)
}

func (b *Buffer) grow(n int) {
	need := b.length + n

	size := baseline
	for size < need {
		size *= 2
	}
	// The window is not moved on grow, so make sure its offset still
	// fits in front of the new data.
	for size < b.begin+need {
		size *= 2
	}

	mem := make([]byte, size)
	copy(mem, b.mem[:b.begin+b.length])
	b.mem = mem
}

// Pop consumes n bytes from the front of the window. Once the consumed
// region crosses half the capacity the live window is compacted back
// to offset zero so repeated fill-and-drain cycles stay bounded.
func (b *Buffer) Pop(n int) {
	if n > b.length {
		n = b.length
	}

	b.begin += n
	b.length -= n

	if b.begin > len(b.mem)/2 {
		b.compact()
	}
}

func (b *Buffer) compact() {
	copy(b.mem, b.mem[b.begin:b.begin+b.length])
	for i := b.length; i < b.begin+b.length; i++ {
		b.mem[i] = 0
	}
	b.begin = 0
}
