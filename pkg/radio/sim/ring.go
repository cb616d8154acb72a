package sim

const ringCapacity = 64

type item struct {
	data []byte
	err  error
}

type ringBuffer struct {
	data       [ringCapacity]item
	head, tail int // head = next pop, tail = next push
	count      int
}

func (rb *ringBuffer) push(it item) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.data[rb.tail] = item{}
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = it
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() (item, bool) {
	if rb.count == 0 {
		return item{}, false
	}
	it := rb.data[rb.head]
	rb.data[rb.head] = item{}
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return it, true
}

func (rb *ringBuffer) clear() {
	*rb = ringBuffer{}
}

func (rb *ringBuffer) snapshot() [][]byte {
	out := make([][]byte, 0, rb.count)
	i := rb.head
	for c := 0; c < rb.count; c++ {
		out = append(out, append([]byte(nil), rb.data[i].data...))
		i = (i + 1) % ringCapacity
	}
	return out
}
