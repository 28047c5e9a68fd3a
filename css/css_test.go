package css

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestCSS(t *testing.T) {
	cssTests := []struct {
		css      string
		expected string
	}{
		{"", ""},
		{"a { color: red; }", "a{color:red}"},
		{"a{p:v;q:w;}", "a{p:v;q:w}"},
		{"a ,  b { x: y; }", "a,b{x:y}"},
		{"div p { margin: 0 auto; }", "div p{margin:0 auto}"},
		{"/* c */ a{}", "a{}"},
		{"/*! k */a{}", "/*! k */a{}"},
		{"@import \"a\";", "@import \"a\";"},
		{"a\n{\n\tcolor: red;\n}\n", "a{color:red}"},
	}
	for _, tt := range cssTests {
		t.Run(tt.css, func(t *testing.T) {
			c := &Compressor{}
			result, err := c.Compress(tt.css)
			test.Error(t, err)
			test.String(t, result, tt.expected)
		})
	}
}

func TestCSSKeepComments(t *testing.T) {
	c := &Compressor{KeepComments: true}
	result, err := c.Compress("/* keep */ a{}")
	test.Error(t, err)
	test.String(t, result, "/* keep */ a{}")
}
