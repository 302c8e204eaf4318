package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
)

const (
	readBufSize = 4096

	// bulkChunk caps the first allocation for a bulk payload, so a large
	// declared length only costs memory as its bytes arrive.
	bulkChunk = 64 * 1024
)

// Reader decodes a stream of RESP frames. It reads straight off a
// bufio.Reader, so every byte is examined once however the frame is split
// across reads.
type Reader struct {
	br     *bufio.Reader
	parser Parser
	err    error
}

// NewReader returns a Reader over rd using the given parser limits.
func NewReader(rd io.Reader, parser Parser) *Reader {
	return &Reader{
		br:     bufio.NewReaderSize(rd, readBufSize),
		parser: parser,
	}
}

// ReadValue returns the next complete frame.
//
// Errors are sticky: the stream position is lost, so every later call
// returns the same error. io.EOF is returned only on a frame boundary; a
// stream that ends mid-frame yields io.ErrUnexpectedEOF.
func (r *Reader) ReadValue() (Value, error) {
	if r.err != nil {
		return Value{}, r.err
	}

	if _, err := r.br.Peek(1); err != nil {
		r.err = err
		return Value{}, err
	}

	v, err := r.readValue(0)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return Value{}, err
	}
	return v, nil
}

func (r *Reader) readValue(depth int) (Value, error) {
	tag, err := r.br.ReadByte()
	if err != nil {
		return Value{}, err
	}

	switch tag {
	case '+':
		line, err := r.readLine()
		if err != nil {
			return Value{}, err
		}
		return SimpleString(string(line)), nil
	case '-':
		line, err := r.readLine()
		if err != nil {
			return Value{}, err
		}
		return Error(string(line)), nil
	case ':':
		n, err := r.readInt()
		if err != nil {
			return Value{}, err
		}
		return Integer(n), nil
	case '$':
		return r.readBulk()
	case '*':
		return r.readArray(depth)
	default:
		if err := r.br.UnreadByte(); err != nil {
			return Value{}, err
		}
		return r.readInline()
	}
}

// readRaw returns the bytes up to, not including, the next LF.
func (r *Reader) readRaw(what string) ([]byte, error) {
	limit := r.parser.maxInlineLen()

	var line []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		if err == nil {
			line = append(line, frag[:len(frag)-1]...)
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
		line = append(line, frag...)
		if len(line) > limit {
			return nil, fmt.Errorf("%w: %s length exceeds %d", ErrLimitExceeded, what, limit)
		}
	}

	if len(line) > limit {
		return nil, fmt.Errorf("%w: %s length exceeds %d", ErrLimitExceeded, what, limit)
	}
	return line, nil
}

func (r *Reader) readLine() ([]byte, error) {
	line, err := r.readRaw("line")
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[len(line)-1] != '\r' {
		return nil, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return line[:len(line)-1], nil
}

func (r *Reader) readInt() (int64, error) {
	line, err := r.readLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
	}
	return n, nil
}

func (r *Reader) readBulk() (Value, error) {
	n, err := r.readInt()
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return NullBulk(), nil
	}
	if n < 0 {
		return Value{}, fmt.Errorf("%w: invalid bulk length %d", ErrProtocol, n)
	}
	if limit := r.parser.maxBulkLen(); n > int64(limit) {
		return Value{}, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, n, limit)
	}

	total := int(n) + 2
	data := make([]byte, 0, min(total, bulkChunk))
	for len(data) < total {
		if len(data) == cap(data) {
			data = slices.Grow(data, min(total-len(data), len(data)))
		}
		end := min(cap(data), total)
		m, err := io.ReadFull(r.br, data[len(data):end])
		data = data[:len(data)+m]
		if err != nil {
			return Value{}, err
		}
	}

	if !bytes.HasSuffix(data, []byte("\r\n")) {
		return Value{}, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	return Value{Kind: KindBulkString, Bulk: data[:n]}, nil
}

func (r *Reader) readArray(depth int) (Value, error) {
	if limit := r.parser.maxDepth(); depth >= limit {
		return Value{}, fmt.Errorf("%w: nesting depth exceeds %d", ErrLimitExceeded, limit)
	}

	n, err := r.readInt()
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return NullArray(), nil
	}
	if n < 0 {
		return Value{}, fmt.Errorf("%w: invalid array length %d", ErrProtocol, n)
	}
	if limit := r.parser.maxArrayLen(); n > int64(limit) {
		return Value{}, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, n, limit)
	}

	elems := make([]Value, 0, min(int(n), 64))
	for i := int64(0); i < n; i++ {
		elem, err := r.readValue(depth + 1)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, elem)
	}
	return Array(elems...), nil
}

// readInline reads an untagged line. A bare LF terminator is accepted.
func (r *Reader) readInline() (Value, error) {
	line, err := r.readRaw("inline")
	if err != nil {
		return Value{}, err
	}
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return SimpleString(string(line)), nil
}
