package kfmt

import "io"

// ringBufferSize is the capacity of the buffer that accumulates Fprintf
// output written with a nil sink, before a real sink is attached. Must be a
// power of two.
const ringBufferSize = 2048

// ringBuffer is a fixed-capacity ring buffer used to retain log output
// produced before internal/klog.SetOutput is called.
//
// Adapted from gopheros/kernel/kfmt/ringbuf.go.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
}

var earlyBuffer ringBuffer

// Drain copies any buffered output accumulated while no sink was attached to
// w and clears the buffer.
func Drain(w io.Writer) {
	io.Copy(w, &earlyBuffer)
}

func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		}
	}

	return len(p), nil
}

func (rb *ringBuffer) Read(p []byte) (n int, err error) {
	switch {
	case rb.rIndex < rb.wIndex:
		n = rb.wIndex - rb.rIndex
		if pLen := len(p); pLen < n {
			n = pLen
		}

		copy(p, rb.buffer[rb.rIndex:rb.rIndex+n])
		rb.rIndex += n

		return n, nil
	case rb.rIndex > rb.wIndex:
		n = len(rb.buffer) - rb.rIndex
		if pLen := len(p); pLen < n {
			n = pLen
		}

		copy(p, rb.buffer[rb.rIndex:rb.rIndex+n])
		rb.rIndex += n

		if rb.rIndex == len(rb.buffer) {
			rb.rIndex = 0
		}

		return n, nil
	default:
		return 0, io.EOF
	}
}
