package wire

import (
	"sync"

	"github.com/wippyai/pbconv/stream"
)

const (
	// Scratch writers that grew past this are dropped instead of pooled
	poolMaxCap = 64 << 10
)

// scratch writers hold nested message bodies until their length is known
var scratchPool = sync.Pool{
	New: func() any {
		return stream.NewWriter(0)
	},
}

func getScratch(maxSize int) *stream.Writer {
	w := scratchPool.Get().(*stream.Writer)
	w.Reset(maxSize)
	return w
}

func putScratch(w *stream.Writer) {
	if w == nil || cap(w.Bytes()) > poolMaxCap {
		return // reject oversized
	}
	w.Reset(0)
	scratchPool.Put(w)
}
