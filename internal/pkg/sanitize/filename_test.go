package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"spaces collapse", "my  report.pdf", "my_report.pdf"},
		{"unix path stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", "C:\\Users\\me\\notes.txt", "notes.txt"},
		{"unsafe chars dropped", "a<b>c?.txt", "abc.txt"},
		{"leading dots trimmed", "..hidden", "hidden"},
		{"only unsafe chars", "???", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.in))
		})
	}
}
