package resp

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Protocol limits.
const (
	// DefaultMaxDepth bounds array nesting. Commands never nest, replies
	// rarely go past two levels.
	DefaultMaxDepth = 32

	// DefaultMaxBulkLen matches the 512MB proto-max-bulk-len of the
	// protocol's reference server.
	DefaultMaxBulkLen = 512 * 1024 * 1024

	// DefaultMaxArrayLen limits the number of elements in one array.
	DefaultMaxArrayLen = 1024 * 1024

	// DefaultMaxInlineLen limits a single header or inline line.
	DefaultMaxInlineLen = 64 * 1024
)

var (
	// ErrIncomplete means the buffer ends before the frame does. More
	// bytes are needed; nothing was consumed.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrProtocol means the bytes are not valid RESP.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLimitExceeded means a length or the nesting depth is over the
	// parser's limits.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Parser decodes RESP frames from a byte buffer. The zero value uses the
// default limits.
type Parser struct {
	MaxDepth     int
	MaxBulkLen   int
	MaxArrayLen  int
	MaxInlineLen int
}

var defaultParser Parser

// Parse decodes one value from buf starting at offset using the default
// limits. It returns the value and the offset just past it.
func Parse(buf []byte, offset int) (Value, int, error) {
	return defaultParser.Parse(buf, offset)
}

// Parse decodes one value from buf starting at offset.
func (p *Parser) Parse(buf []byte, offset int) (Value, int, error) {
	if offset < 0 || offset > len(buf) {
		return Value{}, offset, fmt.Errorf("%w: offset %d out of range", ErrProtocol, offset)
	}
	return p.parse(buf, offset, 0)
}

func (p *Parser) parse(buf []byte, off, depth int) (Value, int, error) {
	if off >= len(buf) {
		return Value{}, off, ErrIncomplete
	}

	switch buf[off] {
	case '+':
		line, next, err := p.readLine(buf, off+1)
		if err != nil {
			return Value{}, off, err
		}
		return SimpleString(string(line)), next, nil
	case '-':
		line, next, err := p.readLine(buf, off+1)
		if err != nil {
			return Value{}, off, err
		}
		return Error(string(line)), next, nil
	case ':':
		n, next, err := p.readInt(buf, off+1)
		if err != nil {
			return Value{}, off, err
		}
		return Integer(n), next, nil
	case '$':
		return p.readBulk(buf, off)
	case '*':
		return p.readArray(buf, off, depth)
	default:
		return p.readInline(buf, off)
	}
}

// readLine returns the bytes between off and the next CRLF.
func (p *Parser) readLine(buf []byte, off int) ([]byte, int, error) {
	limit := p.maxInlineLen()
	idx := bytes.IndexByte(buf[off:], '\n')
	if idx < 0 {
		if len(buf)-off > limit {
			return nil, off, fmt.Errorf("%w: line length exceeds %d", ErrLimitExceeded, limit)
		}
		return nil, off, ErrIncomplete
	}
	if idx > limit {
		return nil, off, fmt.Errorf("%w: line length exceeds %d", ErrLimitExceeded, limit)
	}
	if idx == 0 || buf[off+idx-1] != '\r' {
		return nil, off, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return buf[off : off+idx-1], off + idx + 1, nil
}

func (p *Parser) readInt(buf []byte, off int) (int64, int, error) {
	line, next, err := p.readLine(buf, off)
	if err != nil {
		return 0, off, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, off, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
	}
	return n, next, nil
}

func (p *Parser) readBulk(buf []byte, start int) (Value, int, error) {
	n, off, err := p.readInt(buf, start+1)
	if err != nil {
		return Value{}, start, err
	}
	if n == -1 {
		return NullBulk(), off, nil
	}
	if n < 0 {
		return Value{}, start, fmt.Errorf("%w: invalid bulk length %d", ErrProtocol, n)
	}
	if limit := p.maxBulkLen(); n > int64(limit) {
		return Value{}, start, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, n, limit)
	}

	if n > int64(len(buf)-off-2) {
		return Value{}, start, ErrIncomplete
	}
	end := off + int(n)
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return Value{}, start, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}

	data := make([]byte, n)
	copy(data, buf[off:end])
	return Value{Kind: KindBulkString, Bulk: data}, end + 2, nil
}

func (p *Parser) readArray(buf []byte, start, depth int) (Value, int, error) {
	if limit := p.maxDepth(); depth >= limit {
		return Value{}, start, fmt.Errorf("%w: nesting depth exceeds %d", ErrLimitExceeded, limit)
	}

	n, off, err := p.readInt(buf, start+1)
	if err != nil {
		return Value{}, start, err
	}
	if n == -1 {
		return NullArray(), off, nil
	}
	if n < 0 {
		return Value{}, start, fmt.Errorf("%w: invalid array length %d", ErrProtocol, n)
	}
	if limit := p.maxArrayLen(); n > int64(limit) {
		return Value{}, start, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, n, limit)
	}

	elems := make([]Value, 0, min(int(n), 64))
	for i := int64(0); i < n; i++ {
		var elem Value
		elem, off, err = p.parse(buf, off, depth+1)
		if err != nil {
			return Value{}, start, err
		}
		elems = append(elems, elem)
	}
	return Array(elems...), off, nil
}

// readInline reads an untagged line. A bare LF terminator is accepted.
func (p *Parser) readInline(buf []byte, off int) (Value, int, error) {
	limit := p.maxInlineLen()
	idx := bytes.IndexByte(buf[off:], '\n')
	if idx < 0 {
		if len(buf)-off > limit {
			return Value{}, off, fmt.Errorf("%w: inline length exceeds %d", ErrLimitExceeded, limit)
		}
		return Value{}, off, ErrIncomplete
	}
	if idx > limit {
		return Value{}, off, fmt.Errorf("%w: inline length exceeds %d", ErrLimitExceeded, limit)
	}
	line := buf[off : off+idx]
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return SimpleString(string(line)), off + idx + 1, nil
}

func (p *Parser) maxDepth() int {
	if p.MaxDepth > 0 {
		return p.MaxDepth
	}
	return DefaultMaxDepth
}

// maxBulkLen leaves room for the CRLF so a payload length plus its
// terminator always fits in an int.
func (p *Parser) maxBulkLen() int {
	if p.MaxBulkLen > 0 {
		return min(p.MaxBulkLen, math.MaxInt-2)
	}
	return DefaultMaxBulkLen
}

func (p *Parser) maxArrayLen() int {
	if p.MaxArrayLen > 0 {
		return p.MaxArrayLen
	}
	return DefaultMaxArrayLen
}

func (p *Parser) maxInlineLen() int {
	if p.MaxInlineLen > 0 {
		return p.MaxInlineLen
	}
	return DefaultMaxInlineLen
}
