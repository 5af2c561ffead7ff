package worker

import (
	"strings"
	"testing"
)

func TestCheckLua(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantErr  bool
		contains string
	}{
		{"empty", "", false, ""},
		{"valid", "local t = {a = 1}\nfor k, v in pairs(t) do\n  print(k, v)\nend\n", false, ""},
		{"missing end", "function f()\n  return 1\n", true, ""},
		{"unbalanced paren", "print((1)\n", true, ""},
		{"unterminated string", "local s = \"abc\nprint(s)\n", true, "unterminated string"},
		{"stray end", "local x = 1\nend\n", true, "'end'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := CheckLua(tt.name+".lua", tt.src)
			if !tt.wantErr {
				if len(lines) != 0 {
					t.Errorf("expected clean report, got %v", lines)
				}
				return
			}
			if len(lines) != 1 {
				t.Fatalf("expected one problem, got %v", lines)
			}
			if !strings.HasPrefix(lines[0], tt.name+".lua:") {
				t.Errorf("expected %q to start with the script name", lines[0])
			}
			if !strings.Contains(lines[0], tt.contains) {
				t.Errorf("expected %q in %q", tt.contains, lines[0])
			}
		})
	}
}

func TestCheckLuaPositions(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		prefix string
	}{
		{"dangling assignment", "local x = \n", "script/bad.lua:1:"},
		{"dangling after blank lines", "local a = 1\nlocal x =\n\n\n", "script/bad.lua:2:"},
		{"stray end", "local x = 1\nend\n", "script/bad.lua:2:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := CheckLua("script/bad.lua", tt.src)
			if len(lines) != 1 {
				t.Fatalf("expected one problem, got %v", lines)
			}
			if !strings.HasPrefix(lines[0], tt.prefix) {
				t.Errorf("expected %q to start with %q", lines[0], tt.prefix)
			}
		})
	}
}
