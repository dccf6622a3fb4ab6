package netsync

import "errors"

// ErrShortBuffer is returned when a message ends before all fields are read.
var ErrShortBuffer = errors.New("netsync: message too short")

// bitWriter packs values MSB first.
type bitWriter struct {
	buf []byte
	n   int // bits written
}

func (w *bitWriter) writeBits(v uint32, bits int) {
	for i := bits - 1; i >= 0; i-- {
		if w.n%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v&(1<<uint(i)) != 0 {
			w.buf[w.n/8] |= 0x80 >> uint(w.n%8)
		}
		w.n++
	}
}

func (w *bitWriter) writeBool(b bool) {
	if b {
		w.writeBits(1, 1)
	} else {
		w.writeBits(0, 1)
	}
}

func (w *bitWriter) bytes() []byte {
	return w.buf
}

type bitReader struct {
	buf []byte
	n   int
}

func (r *bitReader) readBits(bits int) (uint32, error) {
	if r.n+bits > len(r.buf)*8 {
		return 0, ErrShortBuffer
	}
	var v uint32
	for i := 0; i < bits; i++ {
		v <<= 1
		if r.buf[r.n/8]&(0x80>>uint(r.n%8)) != 0 {
			v |= 1
		}
		r.n++
	}
	return v, nil
}

func (r *bitReader) readBool() (bool, error) {
	v, err := r.readBits(1)
	return v == 1, err
}
