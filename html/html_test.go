package html

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/tdewolff/test"

	"github.com/hazendaz/htmlcompressor"
)

func TestHTML(t *testing.T) {
	htmlTests := []struct {
		html     string
		expected string
	}{
		{"", ""},
		{"<p>x</p>", "<p>x</p>"},
		{"<!-- c --><p>  a   b  </p>", "<p> a b </p>"},
		{"<!---->x", "x"},
		{"a\nb", "a b"},
		{"  <p>x</p>  ", "<p>x</p>"},
		{"<p title = \"x\" >text</p>", "<p title=\"x\">text</p>"},
		{"<br />", "<br/>"},

		// protected content survives byte for byte
		{"<pre>  a \n b  </pre>", "<pre>  a \n b  </pre>"},
		{"<textarea>  a   b  </textarea>", "<textarea>  a   b  </textarea>"},
		{"<script>  var x  =  1;  </script>", "<script>  var x  =  1;  </script>"},
		{"<style>  a  {  }  </style>", "<style>  a  {  }  </style>"},
		{"<pre></pre>", "<pre></pre>"},
		{"<pre>   </pre>", "<pre> </pre>"},

		// conditional comments are kept, their body is compressed
		{"<!-- x --><!--[if lt IE 7]><p>  a   b  </p><![endif]-->", "<!--[if lt IE 7]><p> a b </p><![endif]-->"},
		// the downlevel-revealed form has no comment close and is not protected
		{"<![if !IE]>  a   b  <![endif]>", "<![if !IE]> a b <![endif]>"},

		// skip blocks drop their markers and keep their content
		{"a <!-- {{{ -->  x   y  <!-- }}} --> b", "a   x   y   b"},

		// inline event handlers are protected
		{"<a onclick=\"alert( 1,  2 )\">x</a>", "<a onclick=\"alert( 1,  2 )\">x</a>"},
		{"<a onclick='alert( 1 )'>x</a>", "<a onclick='alert( 1 )'>x</a>"},
	}
	for _, tt := range htmlTests {
		t.Run(tt.html, func(t *testing.T) {
			c := &Compressor{}
			result, err := c.Compress(tt.html)
			test.Error(t, err)
			test.String(t, result, tt.expected)
		})
	}
}

func TestHTMLOptions(t *testing.T) {
	htmlTests := []struct {
		html     string
		opts     Options
		expected string
	}{
		// everything off leaves comments and whitespace runs alone
		{"<!-- c --><p>  a  </p>", Options{KeepComments: true, KeepMultiSpaces: true}, "<!-- c --><p>  a  </p>"},
		{"<p title = \"x\">a</p>", Options{KeepComments: true, KeepMultiSpaces: true}, "<p title=\"x\">a</p>"},

		{"<p>x</p>  \n <p>y</p>", Options{RemoveIntertagSpaces: true}, "<p>x</p><p>y</p>"},
		{"<p>x</p> y <p>z</p>", Options{RemoveIntertagSpaces: true}, "<p>x</p> y <p>z</p>"},

		{"<a href=\"x\">y</a>", Options{RemoveQuotes: true}, "<a href=x>y</a>"},
		{"<a href='x'>y</a>", Options{RemoveQuotes: true}, "<a href=x>y</a>"},
		{"<img src=\"x\"/>", Options{RemoveQuotes: true}, "<img src=x />"},
		{"<a href=\"x y\">z</a>", Options{RemoveQuotes: true}, "<a href=\"x y\">z</a>"},

		{"<!DOCTYPE HTML PUBLIC \"-//W3C//DTD HTML 4.01//EN\">x", Options{SimpleDoctype: true}, "<!DOCTYPE html>x"},

		{"<script type=\"text/javascript\">var x;</script>", Options{RemoveScriptAttributes: true}, "<script>var x;</script>"},
		{"<script language=\"javascript\">var x;</script>", Options{RemoveScriptAttributes: true}, "<script>var x;</script>"},
		{"<style type=\"text/css\">a{}</style>", Options{RemoveStyleAttributes: true}, "<style>a{}</style>"},
		{"<link rel=\"stylesheet\" type=\"text/css\" href=\"s.css\">", Options{RemoveLinkAttributes: true}, "<link rel=\"stylesheet\" href=\"s.css\">"},
		{"<link rel=\"alternate\" type=\"text/css\" href=\"s.css\">", Options{RemoveLinkAttributes: true}, "<link rel=\"alternate\" type=\"text/css\" href=\"s.css\">"},
		{"<form method=\"get\" action=\"/\">x</form>", Options{RemoveFormAttributes: true}, "<form action=\"/\">x</form>"},
		{"<input type=\"text\" name=\"q\">", Options{RemoveInputAttributes: true}, "<input name=\"q\">"},
		{"<input checked=\"checked\">", Options{SimpleBooleanAttributes: true}, "<input checked>"},
		{"<option selected=\"selected\">x</option>", Options{SimpleBooleanAttributes: true}, "<option selected>x</option>"},

		{"<a onclick=\"javascript:alert(1)\">x</a>", Options{RemoveJavaScriptProtocol: true}, "<a onclick=\"alert(1)\">x</a>"},
		{"<a onclick=\"alert(1)\">x</a>", Options{RemoveJavaScriptProtocol: true}, "<a onclick=\"alert(1)\">x</a>"},

		{"<a href=\"http://x.com\">y</a>", Options{RemoveHTTPProtocol: true}, "<a href=\"//x.com\">y</a>"},
		{"<a href=\"http://x.com\" rel=\"external\">y</a>", Options{RemoveHTTPProtocol: true}, "<a href=\"http://x.com\" rel=\"external\">y</a>"},
		{"<a href=\"https://x.com\">y</a>", Options{RemoveHTTPSProtocol: true}, "<a href=\"//x.com\">y</a>"},
		{"<a href=\"https://x.com\" rel=\"external\">y</a>", Options{RemoveHTTPSProtocol: true}, "<a href=\"https://x.com\" rel=\"external\">y</a>"},
		{"<img src=\"http://x.com/a.png\">", Options{RemoveHTTPProtocol: true}, "<img src=\"//x.com/a.png\">"},

		{"text <p> a </p> text", Options{RemoveSurroundingSpaces: "p,br"}, "text<p>a</p>text"},
		{"a <br> b", Options{RemoveSurroundingSpaces: BlockTagsMin}, "a<br>b"},
		{"a <span> b </span> c", Options{RemoveSurroundingSpaces: BlockTagsMin}, "a <span> b </span> c"},
		{"a <span> b </span> c", Options{RemoveSurroundingSpaces: AllTags}, "a<span>b</span>c"},

		{"a\n   b", Options{PreserveLineBreaks: true}, "a\nb"},
		{"a \r\n b", Options{PreserveLineBreaks: true}, "a\r\nb"},
	}
	for _, tt := range htmlTests {
		t.Run(tt.html, func(t *testing.T) {
			c := &Compressor{Options: tt.opts}
			result, err := c.Compress(tt.html)
			test.Error(t, err)
			test.String(t, result, tt.expected)
		})
	}
}

func TestHTMLDisabled(t *testing.T) {
	c := &Compressor{Options: Options{Disabled: true}}
	result, err := c.Compress("<!-- c -->  <p> x </p>")
	test.Error(t, err)
	test.String(t, result, "<!-- c -->  <p> x </p>")
}

func TestHTMLPreservePatterns(t *testing.T) {
	htmlTests := []struct {
		html     string
		preserve []*regexp.Regexp
		expected string
	}{
		{"x <?php  echo ' a  b '; ?> y", []*regexp.Regexp{PHPTagPattern}, "x <?php  echo ' a  b '; ?> y"},
		{"x <%  server  %> y", []*regexp.Regexp{ServerScriptTagPattern}, "x <%  server  %> y"},
		{"x <!--#include  virtual=\"a\" --> y", []*regexp.Regexp{ServerSideIncludePattern}, "x <!--#include  virtual=\"a\" --> y"},
		{"a {{  var  }} b", []*regexp.Regexp{regexp.MustCompile(`\{\{.*?\}\}`)}, "a {{  var  }} b"},
	}
	for _, tt := range htmlTests {
		t.Run(tt.html, func(t *testing.T) {
			c := &Compressor{Options: Options{Preserve: tt.preserve}}
			result, err := c.Compress(tt.html)
			test.Error(t, err)
			test.String(t, result, tt.expected)
		})
	}
}

func TestHTMLScriptTypes(t *testing.T) {
	trim := htmlcompressor.Func(func(s string) (string, error) {
		return strings.TrimSpace(s), nil
	})

	htmlTests := []struct {
		html     string
		expected string
	}{
		// javascript types are handed to the sub-compressor
		{"<script> var x; </script>", "<script>var x;</script>"},
		{"<script type=\"text/javascript\"> var x; </script>", "<script type=\"text/javascript\">var x;</script>"},
		{"<script type='application/javascript'> var x; </script>", "<script type='application/javascript'>var x;</script>"},

		// unknown types are preserved opaquely
		{"<script type=\"text/x-custom\"> raw  content </script>", "<script type=\"text/x-custom\"> raw  content </script>"},

		// templates are compressed with the document
		{"<script type=\"text/x-jquery-tmpl\"> <p>  a   b  </p> </script>", "<script type=\"text/x-jquery-tmpl\"> <p> a b </p> </script>"},

		// an empty script body is not extracted
		{"<script>   </script>", "<script> </script>"},

		// CDATA wrappers are kept around the compressed content
		{"<script> <![CDATA[ var x; ]]> </script>", "<script><![CDATA[var x;]]></script>"},
	}
	for _, tt := range htmlTests {
		t.Run(tt.html, func(t *testing.T) {
			c := &Compressor{JS: trim}
			result, err := c.Compress(tt.html)
			test.Error(t, err)
			test.String(t, result, tt.expected)
		})
	}
}

func TestHTMLSubCompressorError(t *testing.T) {
	fail := htmlcompressor.Func(func(s string) (string, error) {
		return "", errors.New("broken")
	})

	c := &Compressor{JS: fail}
	result, err := c.Compress("<p> a </p><script>var x;</script>")
	test.That(t, err != nil, "sub-compressor failures must be reported")

	// the document is still produced, the failing block keeps its content
	test.String(t, result, "<p> a </p><script>var x;</script>")
}

func TestHTMLIdempotent(t *testing.T) {
	source := "<!-- c -->\n<div  class=\"a\" >\n  <p>  a   b  </p>\n  <pre>  keep  </pre>\n</div>\n"

	c := &Compressor{}
	once, err := c.Compress(source)
	test.Error(t, err)
	twice, err := c.Compress(once)
	test.Error(t, err)
	test.String(t, twice, once)
}

func TestHTMLStatistics(t *testing.T) {
	c := &Compressor{Stats: true}
	source := "<p>  a  </p><pre> x </pre><script>var x;</script><a onclick=\"f()\">y</a>"
	result, err := c.Compress(source)
	test.Error(t, err)

	s := c.Statistics()
	test.That(t, s != nil, "statistics must be collected")
	test.T(t, s.Original.Filesize, len(source))
	test.T(t, s.Compressed.Filesize, len(result))
	// preserved is the pre body, the event handler and the script body, which
	// has no sub-compressor configured
	test.T(t, s.PreservedSize, len(" x ")+len("f()")+len("var x;"))
	test.T(t, s.Original.InlineScriptSize, len("var x;"))
	test.T(t, s.Original.InlineEventSize, len("f()"))

	// no statistics when disabled
	c = &Compressor{}
	_, err = c.Compress(source)
	test.Error(t, err)
	test.That(t, c.Statistics() == nil, "no statistics when disabled")
}

func TestHTMLPlaceholderLiteral(t *testing.T) {
	// a placeholder-shaped literal with no stored block stays literal
	c := &Compressor{}
	result, err := c.Compress("a %%%~COMPRESS~PRE~7~%%% b")
	test.Error(t, err)
	test.String(t, result, "a %%%~COMPRESS~PRE~7~%%% b")
}
