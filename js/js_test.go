package js

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestJS(t *testing.T) {
	jsTests := []struct {
		js       string
		expected string
	}{
		{"", ""},
		{"var x = 1;", "var x=1;"},
		{"var x = 1;  var y = 2;", "var x=1;var y=2;"},
		{"a /* comment */ b", "a b"},
		{"a; // comment", "a;"},
		{"/*! license */ var x;", "/*! license */var x;"},
		{"function f( a, b ) { return a + b; }", "function f(a,b){return a+b;}"},

		// line terminators survive so semicolon insertion is unaffected
		{"a = b\nc()", "a=b\nc()"},
		{"a = b\n\n\nc()", "a=b\nc()"},
		{"a; // comment\nb;", "a;\nb;"},

		// adjacent tokens that would merge keep one space
		{"a + +b", "a+ +b"},
		{"a - -b", "a- -b"},
		{"a + -b", "a+-b"},
		{"typeof x", "typeof x"},

		// regular expression literals are opaque
		{"a = /x y/.test(s)", "a=/x y/.test(s)"},
		{"a = b / 2 / 3", "a=b/2/3"},
		{"x = 10 / 2", "x=10/2"},
		{"a = 0x10 / 2", "a=0x10/2"},
		{"if (/ re /.test(s)) {}", "if(/ re /.test(s)){}"},
	}
	for _, tt := range jsTests {
		t.Run(tt.js, func(t *testing.T) {
			c := &Compressor{}
			result, err := c.Compress(tt.js)
			test.Error(t, err)
			test.String(t, result, tt.expected)
		})
	}
}

func TestJSKeepComments(t *testing.T) {
	c := &Compressor{KeepComments: true}
	result, err := c.Compress("a; /* keep */ b;")
	test.Error(t, err)
	test.String(t, result, "a;/* keep */b;")
}

func TestJSError(t *testing.T) {
	c := &Compressor{}
	result, err := c.Compress("'unterminated")
	test.That(t, err != nil, "lexer error must be returned")
	test.String(t, result, "'unterminated", "source must be returned unchanged on error")
}
