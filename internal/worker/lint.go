package worker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/parse"
)

// CheckLua parses a Lua script and returns one "name:line:col message" line
// per problem. A script that parses cleanly yields no lines.
func CheckLua(name, src string) []string {
	_, err := parse.Parse(strings.NewReader(src), name)
	if err == nil {
		return nil
	}

	var perr *parse.Error
	if !errors.As(err, &perr) {
		return []string{fmt.Sprintf("%s:0:0 %s", name, strings.TrimSpace(err.Error()))}
	}

	msg := strings.TrimSpace(perr.Message)
	if perr.Token != "" {
		msg = fmt.Sprintf("%s near '%s'", msg, perr.Token)
	}
	line, col := perr.Pos.Line, perr.Pos.Column
	if line == parse.EOF {
		line, col = endOf(src)
		msg += " at end of file"
	}
	return []string{fmt.Sprintf("%s:%d:%d %s", name, line, col, msg)}
}

// endOf returns the position just past the last non-blank line of src.
func endOf(src string) (line, col int) {
	src = strings.TrimRight(src, " \t\r\n")
	last := src[strings.LastIndexByte(src, '\n')+1:]
	return strings.Count(src, "\n") + 1, len(last) + 1
}
