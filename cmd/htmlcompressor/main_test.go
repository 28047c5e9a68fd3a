package main

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestCompilePattern(t *testing.T) {
	patternTests := []struct {
		pattern  string
		filename string
		match    bool
	}{
		{"*.html", "index.html", true},
		{"*.html", "dir/index.html", false},
		{"**.html", "dir/index.html", true},
		{"index.?tml", "index.html", true},
		{"index.html", "index.htm", false},
		{"~^i.*$", "index.html", true},
		{"~index\\.(html|htm)$", "index.htm", true},
		{"~^x", "index.html", false},
		{"\\~x", "~x", true},
	}
	for _, tt := range patternTests {
		t.Run(tt.pattern+" "+tt.filename, func(t *testing.T) {
			re, err := compilePattern(tt.pattern)
			test.Error(t, err)
			test.T(t, re.MatchString(tt.filename), tt.match)
		})
	}
}

func TestParsePreserve(t *testing.T) {
	preserveTests := []struct {
		options          []string
		mode, timestamps bool
	}{
		{[]string{"mode", "timestamps"}, true, true}, // the default
		{[]string{"mode"}, true, false},
		{[]string{"timestamps"}, false, true},
		{[]string{"all"}, true, true},
		{nil, false, false},
	}
	for _, tt := range preserveTests {
		mode, timestamps := parsePreserve(tt.options)
		test.T(t, mode, tt.mode)
		test.T(t, timestamps, tt.timestamps)
	}
}

func TestFileType(t *testing.T) {
	typeTests := []struct {
		filename string
		expected string
	}{
		{"index.html", "html"},
		{"index.HTM", "html"},
		{"page.xhtml", "html"},
		{"feed.rss", "xml"},
		{"data.xml", "xml"},
		{"image.svg", "xml"},
		{"script.js", ""},
		{"noext", ""},
	}
	filetype = ""
	for _, tt := range typeTests {
		t.Run(tt.filename, func(t *testing.T) {
			test.T(t, fileType(tt.filename), tt.expected)
		})
	}
}

func TestNewTask(t *testing.T) {
	taskTests := []struct {
		root, input, output string
		dst                 string
	}{
		{".", "a.html", "", ""},
		{".", "a.html", "out", "out"},
		{".", "a.html", "out/", "out/a.html"},
		{"dir", "dir/b.html", "out/", "out/b.html"},
	}
	for _, tt := range taskTests {
		t.Run(tt.input+" => "+tt.output, func(t *testing.T) {
			task, err := NewTask(tt.root, tt.input, tt.output)
			test.Error(t, err)
			test.T(t, task.src, tt.input)
			test.T(t, task.dst, tt.dst)
		})
	}
}
