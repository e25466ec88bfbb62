package vopl

import "io"

// bitWriter packs values LSB first into a byte stream.
type bitWriter struct {
	buf []byte
	acc uint64
	n   uint8
}

func newBitWriter(capacity int) *bitWriter {
	return &bitWriter{buf: make([]byte, 0, capacity)}
}

func (w *bitWriter) write(v uint64, bits uint8) {
	w.acc |= (v & (1<<bits - 1)) << w.n
	w.n += bits
	for w.n >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.n -= 8
	}
}

// bytes flushes the partial byte, if any, and returns the stream.
func (w *bitWriter) bytes() []byte {
	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc, w.n = 0, 0
	}
	return w.buf
}

type bitReader struct {
	data []byte
	pos  int
	acc  uint64
	n    uint8
}

func newBitReader(b []byte) *bitReader { return &bitReader{data: b} }

func (r *bitReader) read(bits uint8) (uint64, error) {
	for r.n < bits {
		if r.pos >= len(r.data) {
			return 0, io.ErrUnexpectedEOF
		}
		r.acc |= uint64(r.data[r.pos]) << r.n
		r.n += 8
		r.pos++
	}
	v := r.acc & (1<<bits - 1)
	r.acc >>= bits
	r.n -= bits
	return v, nil
}
