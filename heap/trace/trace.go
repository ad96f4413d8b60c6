package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OpKind is the type of a trace operation.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
	OpWrite   OpKind = 'w'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	case OpWrite:
		return "write"
	default:
		return fmt.Sprintf("OpKind(%q)", byte(k))
	}
}

// Op is one trace operation. Size is unused for OpFree.
type Op struct {
	Kind OpKind
	ID   int
	Size int
}

// Trace is a parsed allocation trace.
type Trace struct {
	Name          string // file base name, empty when parsed from a reader
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// Parse reads a trace. Blank lines and lines starting with '#' are ignored.
// The number of operations must match the header.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var header [4]int
	nHeader := 0
	t := &Trace{}
	line := 0

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}

		if nHeader < len(header) {
			v, err := strconv.Atoi(text)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("%w: line %d: header field %q", ErrSyntax, line, text)
			}
			header[nHeader] = v
			nHeader++
			if nHeader == len(header) {
				t.SuggestedHeap, t.NumIDs, t.Weight = header[0], header[1], header[3]
				t.Ops = make([]Op, 0, min(header[2], 1<<20))
			}
			continue
		}

		op, err := parseOp(text, t.NumIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSyntax, line, err)
		}
		t.Ops = append(t.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}

	if nHeader < len(header) {
		return nil, fmt.Errorf("%w: header has %d of %d fields", ErrSyntax, nHeader, len(header))
	}
	if len(t.Ops) != header[2] {
		return nil, fmt.Errorf("%w: header declares %d ops, found %d", ErrSyntax, header[2], len(t.Ops))
	}
	return t, nil
}

func parseOp(text string, numIDs int) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
	op := Op{Kind: OpKind(fields[0][0])}

	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc, OpWrite:
	case OpFree:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d fields, got %d", op.Kind, want, len(fields))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, fmt.Errorf("id %q outside [0, %d)", fields[1], numIDs)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, fmt.Errorf("bad size %q", fields[2])
		}
		op.Size = size
	}
	return op, nil
}

// ParseFile parses the trace at path and names it after the file.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// WriteTo writes t in the text format Parse reads.
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	write := func(format string, args ...any) {
		c, _ := fmt.Fprintf(bw, format, args...)
		n += int64(c)
	}

	write("%d\n%d\n%d\n%d\n", t.SuggestedHeap, t.NumIDs, len(t.Ops), t.Weight)
	for _, op := range t.Ops {
		if op.Kind == OpFree {
			write("%c %d\n", op.Kind, op.ID)
			continue
		}
		write("%c %d %d\n", op.Kind, op.ID, op.Size)
	}
	return n, bw.Flush()
}
