// Package html compresses HTML documents by removing comments, collapsing
// whitespace and stripping redundant attribute syntax, while preserving the
// content of pre, textarea, script and style elements, inline event handlers,
// conditional comments and user supplied patterns byte-for-byte.
//
// Additional regions can be protected with skip markers:
//
//	<!-- {{{ -->
//	    ...
//	<!-- }}} -->
//
// or with any number of preserve patterns, see Options.Preserve.
package html

import (
	"errors"
	"regexp"

	"github.com/hazendaz/htmlcompressor"
)

// Predefined preserve patterns that can be added to Options.Preserve.
var (
	// PHPTagPattern matches <?php ... ?> blocks.
	PHPTagPattern = regexp.MustCompile(`(?is)<\?php.*?\?>`)

	// ServerScriptTagPattern matches <% ... %> blocks.
	ServerScriptTagPattern = regexp.MustCompile(`(?s)<%.*?%>`)

	// ServerSideIncludePattern matches <!--# ... --> blocks.
	ServerSideIncludePattern = regexp.MustCompile(`(?s)<!--\s*#.*?-->`)
)

// Predefined tag lists for Options.RemoveSurroundingSpaces.
const (
	// BlockTagsMin contains tags that are very likely to be block-level.
	BlockTagsMin = "html,head,body,br,p"

	// BlockTagsMax contains tags that are block-level by default, excluding
	// div and li. Table tags are included.
	BlockTagsMax = BlockTagsMin +
		",h1,h2,h3,h4,h5,h6,blockquote,center,dl,fieldset,form,frame,frameset,hr,noframes,ol,table,tbody,tr,td,th,tfoot,thead,ul"

	// AllTags removes spaces around all tags (not recommended).
	AllTags = "all"
)

// Options configures a Compressor. The zero value removes comments and
// collapses whitespace runs; everything else is opt-in.
type Options struct {
	// Disabled makes Compress return its input unchanged.
	Disabled bool

	// KeepComments keeps <!-- ... --> comments. Conditional comments are
	// always kept.
	KeepComments bool

	// KeepMultiSpaces keeps runs of whitespace instead of collapsing them to
	// a single space.
	KeepMultiSpaces bool

	// RemoveIntertagSpaces removes whitespace between tags.
	RemoveIntertagSpaces bool

	// RemoveQuotes removes quotes around attribute values when the value is a
	// single alphanumeric word. The resulting markup is not strictly valid
	// XHTML.
	RemoveQuotes bool

	// SimpleDoctype replaces any doctype declaration with <!DOCTYPE html>.
	SimpleDoctype bool

	// RemoveScriptAttributes removes default type and language attributes
	// from script tags.
	RemoveScriptAttributes bool

	// RemoveStyleAttributes removes the default type attribute from style
	// tags.
	RemoveStyleAttributes bool

	// RemoveLinkAttributes removes the type attribute from stylesheet link
	// tags.
	RemoveLinkAttributes bool

	// RemoveFormAttributes removes method="get" from form tags.
	RemoveFormAttributes bool

	// RemoveInputAttributes removes type="text" from input tags.
	RemoveInputAttributes bool

	// SimpleBooleanAttributes reduces checked, selected, disabled and
	// readonly attributes to their bare names.
	SimpleBooleanAttributes bool

	// RemoveJavaScriptProtocol removes the javascript: pseudo-protocol from
	// inline event handlers.
	RemoveJavaScriptProtocol bool

	// RemoveHTTPProtocol removes the http: prefix from href, src, cite and
	// action attributes, making the URL protocol-relative. Tags marked
	// rel="external" are left untouched.
	RemoveHTTPProtocol bool

	// RemoveHTTPSProtocol removes the https: prefix from href, src, cite and
	// action attributes. Tags marked rel="external" are left untouched.
	RemoveHTTPSProtocol bool

	// PreserveLineBreaks keeps the original line breaks when collapsing
	// whitespace.
	PreserveLineBreaks bool

	// RemoveSurroundingSpaces removes whitespace around the listed tags. It
	// accepts BlockTagsMin, BlockTagsMax, AllTags or a custom comma separated
	// tag list.
	RemoveSurroundingSpaces string

	// Preserve lists patterns whose matches are carried through compression
	// unchanged. Rules are applied in order; earlier rules take priority.
	Preserve []*regexp.Regexp
}

// Compressor compresses HTML documents. The exported fields must not be
// changed while Compress is running. When Stats is enabled the same
// Compressor must not be used from multiple goroutines concurrently, as the
// statistics accumulator is shared between calls.
type Compressor struct {
	Options

	// JS compresses the content of javascript script blocks before they are
	// restored into the document. Nil leaves script content untouched.
	JS htmlcompressor.Compressor

	// CSS compresses the content of style blocks before they are restored
	// into the document. Nil leaves style content untouched.
	CSS htmlcompressor.Compressor

	// Stats enables collection of compression statistics.
	Stats bool

	stats *Statistics
}

// Compress compresses the given HTML source and returns the result. The
// document is always produced; a non-nil error reports sub-compressor
// failures for individual script or style blocks, whose content is then left
// unchanged in the output.
func (c *Compressor) Compress(source string) (string, error) {
	if c.Disabled || source == "" {
		return source, nil
	}

	if c.Stats {
		c.stats = newStatistics(source)
	} else {
		c.stats = nil
	}

	b := &blocks{}
	skeleton, extractErr := c.extract(source, b)
	skeleton = transform(skeleton, c.Options)
	processErr := c.processBlocks(b)
	result := restore(skeleton, b)

	if c.stats != nil {
		c.stats.finish(result)
	}
	return result, errors.Join(extractErr, processErr)
}

// Statistics returns the statistics of the last Compress call, or nil when
// Stats is disabled.
func (c *Compressor) Statistics() *Statistics {
	return c.stats
}

// Copy returns a compressor with the same configuration and independent
// statistics, safe to use from another goroutine.
func (c *Compressor) Copy() *Compressor {
	return &Compressor{Options: c.Options, JS: c.JS, CSS: c.CSS, Stats: c.Stats}
}

// clone returns an independently configured compressor for compressing nested
// content, sharing no mutable state with c.
func (c *Compressor) clone() *Compressor {
	return &Compressor{Options: c.Options, JS: c.JS, CSS: c.CSS}
}
