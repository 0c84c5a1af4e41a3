package workers

import "sync"

// Watermark holds the last observed SMS pledge count. Every reset starts a
// new epoch, and an Advance computed in an earlier epoch is ignored.
type Watermark struct {
	mu    sync.Mutex
	count int64
	epoch uint64
}

func NewWatermark() *Watermark {
	return &Watermark{}
}

func (w *Watermark) Snapshot() (count int64, epoch uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count, w.epoch
}

// Advance stores observed and reports true when it is strictly above the
// current count and no reset happened since epoch was read.
func (w *Watermark) Advance(epoch uint64, observed int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if epoch != w.epoch || observed <= w.count {
		return false
	}
	w.count = observed
	return true
}

func (w *Watermark) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.count = 0
	w.epoch++
}
