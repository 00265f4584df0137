package indicators

// window is a fixed-capacity ring of the most recent closes with a running
// sum. A zero capacity window never fills.
type window struct {
	data []float64
	head int
	size int
	sum  float64
}

func newWindow(capacity int) *window {
	return &window{data: make([]float64, max(capacity, 0))}
}

// push adds x, evicting the oldest value once the window is full.
func (w *window) push(x float64) {
	if len(w.data) == 0 {
		return
	}
	if w.size == len(w.data) {
		w.sum -= w.data[w.head]
	} else {
		w.size++
	}
	w.data[w.head] = x
	w.sum += x
	w.head = (w.head + 1) % len(w.data)
}

func (w *window) full() bool { return len(w.data) > 0 && w.size == len(w.data) }

func (w *window) mean() float64 {
	if w.size == 0 {
		return 0
	}
	return w.sum / float64(w.size)
}

func (w *window) reset() {
	w.head, w.size, w.sum = 0, 0, 0
}
