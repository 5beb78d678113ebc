// Package script parses hash table operation scripts.
//
// The text form contains one operation per line:
//
//	# comment
//	insert <key> <value>
//	get <key>
//	remove <key>
//	delete <key>
//	len
//	stats
//	dump
//	reset
//
// The JSON-lines form contains one JSON object per line:
//
//	{"op":"insert","key":1,"value":"a"}
//	{"op":"get","key":1}
//
// Keys are 32-bit unsigned integers.
package script

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

type Op uint8

const (
	_ Op = iota
	OpInsert
	OpGet
	OpRemove
	OpDelete
	OpLen
	OpStats
	OpDump
	OpReset
)

var opNames = map[string]Op{
	"insert": OpInsert,
	"get":    OpGet,
	"remove": OpRemove,
	"delete": OpDelete,
	"len":    OpLen,
	"stats":  OpStats,
	"dump":   OpDump,
	"reset":  OpReset,
}

func (o Op) String() string {
	for n, op := range opNames {
		if op == o {
			return n
		}
	}
	return ""
}

// HasKey returns true for operations that require a key.
func (o Op) HasKey() bool {
	return o == OpInsert || o == OpGet || o == OpRemove || o == OpDelete
}

// Command is a single parsed operation.
type Command struct {
	Line  int
	Op    Op
	Key   uint32
	Value string
}

// ParseText parses the text form.
func ParseText(r io.Reader) ([]Command, error) {
	var cmds []Command
	err := scanLines(r, func(line int, s string) error {
		s = strings.TrimSpace(s)
		if s == "" || s[0] == '#' {
			return nil
		}
		f := strings.Fields(s)
		op, ok := opNames[f[0]]
		if !ok {
			return &ErrorSyntax{Line: line, Message: "unknown operation " +
				strconv.Quote(f[0])}
		}
		c := Command{Line: line, Op: op}
		switch {
		case op == OpInsert:
			if len(f) < 3 {
				return &ErrorSyntax{Line: line, Message: "expected key and value"}
			}
			// The value is the rest of the line after the key,
			// inner whitespace preserved
			rest := strings.TrimLeftFunc(s[len(f[0]):], unicode.IsSpace)
			c.Value = strings.TrimLeftFunc(rest[len(f[1]):], unicode.IsSpace)
		case op.HasKey():
			if len(f) != 2 {
				return &ErrorSyntax{Line: line, Message: "expected key"}
			}
		default:
			if len(f) != 1 {
				return &ErrorSyntax{Line: line, Message: "unexpected arguments"}
			}
		}
		if op.HasKey() {
			k, err := strconv.ParseUint(f[1], 10, 32)
			if err != nil {
				return &ErrorSyntax{Line: line, Message: "illegal key " +
					strconv.Quote(f[1])}
			}
			c.Key = uint32(k)
		}
		cmds = append(cmds, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

// ParseJSON parses the JSON-lines form.
func ParseJSON(r io.Reader) ([]Command, error) {
	var cmds []Command
	err := scanLines(r, func(line int, s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if !gjson.Valid(s) {
			return &ErrorSyntax{Line: line, Message: "invalid JSON"}
		}
		v := gjson.Parse(s)
		if !v.IsObject() {
			return &ErrorSyntax{Line: line, Message: "expected object"}
		}

		o := v.Get("op")
		if o.Type != gjson.String {
			return &ErrorSyntax{Line: line, Message: "expected string op"}
		}
		op, ok := opNames[o.Str]
		if !ok {
			return &ErrorSyntax{Line: line, Message: "unknown operation " +
				strconv.Quote(o.Str)}
		}
		c := Command{Line: line, Op: op}

		if op.HasKey() {
			k := v.Get("key")
			if !k.Exists() {
				return &ErrorSyntax{Line: line, Message: "expected key"}
			}
			if k.Type != gjson.Number ||
				k.Num < 0 || k.Num > math.MaxUint32 ||
				k.Num != math.Trunc(k.Num) {
				return &ErrorSyntax{Line: line, Message: "illegal key " + k.Raw}
			}
			c.Key = uint32(k.Uint())
		}
		if op == OpInsert {
			val := v.Get("value")
			if val.Type != gjson.String {
				return &ErrorSyntax{Line: line, Message: "expected string value"}
			}
			c.Value = val.Str
		}

		cmds = append(cmds, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

func scanLines(r io.Reader, fn func(line int, s string) error) error {
	s := bufio.NewScanner(r)
	for line := 1; s.Scan(); line++ {
		if err := fn(line, s.Text()); err != nil {
			return err
		}
	}
	return s.Err()
}

type ErrorSyntax struct {
	Line    int
	Message string
}

func (e ErrorSyntax) Error() string {
	var b strings.Builder
	b.WriteString("syntax error at line ")
	b.WriteString(strconv.Itoa(e.Line))
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
