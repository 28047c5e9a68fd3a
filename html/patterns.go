package html

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder tokens use a sigil sequence that does not occur in ordinary
// markup. A document that happens to contain the sigil is not supported; the
// collision is not detected.
const (
	placeholderPrefix = "%%%~COMPRESS~"
	placeholderSuffix = "~%%%"
)

func placeholder(kind string, index int) string {
	return placeholderPrefix + kind + "~" + strconv.Itoa(index) + placeholderSuffix
}

func userPlaceholder(rule, index int) string {
	return placeholder("USER"+strconv.Itoa(rule), index)
}

func userPlaceholderPattern(rule int) *regexp.Regexp {
	return regexp.MustCompile(`%%%~COMPRESS~USER` + strconv.Itoa(rule) + `~(\d+)~%%%`)
}

// Patterns that locate placeholders during restoration.
var (
	condPlaceholderRe      = regexp.MustCompile(`%%%~COMPRESS~COND~(\d+)~%%%`)
	prePlaceholderRe       = regexp.MustCompile(`%%%~COMPRESS~PRE~(\d+)~%%%`)
	textAreaPlaceholderRe  = regexp.MustCompile(`%%%~COMPRESS~TEXTAREA~(\d+)~%%%`)
	scriptPlaceholderRe    = regexp.MustCompile(`%%%~COMPRESS~SCRIPT~(\d+)~%%%`)
	stylePlaceholderRe     = regexp.MustCompile(`%%%~COMPRESS~STYLE~(\d+)~%%%`)
	eventPlaceholderRe     = regexp.MustCompile(`%%%~COMPRESS~EVENT~(\d+)~%%%`)
	skipPlaceholderRe      = regexp.MustCompile(`%%%~COMPRESS~SKIP~(\d+)~%%%`)
	lineBreakPlaceholderRe = regexp.MustCompile(`%%%~COMPRESS~LT~(\d+)~%%%`)
)

// Patterns that locate protected regions during extraction.
var (
	skipBlockRe   = regexp.MustCompile(`(?is)<!--\s*\{\{\{\s*-->(.*?)<!--\s*\}\}\}\s*-->`)
	condCommentRe = regexp.MustCompile(`(?is)(<!(?:--)?\[[^\]]+?\]>)(.*?)(<!\[[^\]]+\]-->)`)
	preTagRe      = regexp.MustCompile(`(?is)(<pre[^>]*?>)(.*?)(</pre>)`)
	textAreaRe    = regexp.MustCompile(`(?is)(<textarea[^>]*?>)(.*?)(</textarea>)`)
	scriptRe      = regexp.MustCompile(`(?is)(<script[^>]*?>)(.*?)(</script>)`)
	styleRe       = regexp.MustCompile(`(?is)(<style[^>]*?>)(.*?)(</style>)`)

	// Inline event handler values, one pattern per quote style. The value may
	// contain escaped characters but no raw newlines.
	eventDoubleQuotedRe = regexp.MustCompile(`(?i)(\son[a-z]+\s*=\s*")([^"\\\r\n]*(?:\\.[^"\\\r\n]*)*)(")`)
	eventSingleQuotedRe = regexp.MustCompile(`(?i)(\son[a-z]+\s*=\s*')([^'\\\r\n]*(?:\\.[^'\\\r\n]*)*)(')`)

	// A newline together with the blank runs around it.
	lineBreakRe = regexp.MustCompile(`(?:[ \t]*(\r?\n)[ \t]*)+`)

	// The type attribute of a script opening tag. One of the three groups
	// holds the value, depending on the quote style.
	typeAttrRe = regexp.MustCompile(`(?is)type\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>"']+))`)

	// A CDATA section with nothing but whitespace around it.
	cdataRe = regexp.MustCompile(`(?is)^\s*<!\[CDATA\[(.*?)\]\]>\s*$`)
)

// Patterns used by the skeleton transformation.
var (
	commentRe = regexp.MustCompile(`(?is)<!---->|<!--[^\[].*?-->`)
	doctypeRe = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`)

	jsTypeAttrRe    = regexp.MustCompile(`(?is)(<script[^>]*)type\s*=\s*(?:"(?:text|application)/javascript"|'(?:text|application)/javascript'|(?:text|application)/javascript)([^>]*>)`)
	jsLangAttrRe    = regexp.MustCompile(`(?is)(<script[^>]*)language\s*=\s*(?:"javascript"|'javascript'|javascript)([^>]*>)`)
	styleTypeAttrRe = regexp.MustCompile(`(?is)(<style[^>]*)type\s*=\s*(?:"text/(?:css|style)"|'text/(?:css|style)'|text/(?:css|style))([^>]*>)`)
	linkTypeAttrRe  = regexp.MustCompile(`(?is)(<link[^>]*)type\s*=\s*(?:"text/(?:css|plain)"|'text/(?:css|plain)'|text/(?:css|plain))([^>]*>)`)
	linkRelAttrRe   = regexp.MustCompile(`(?is)^<link[^>]*rel\s*=\s*(?:"(?:alternate\s+)?stylesheet"|'(?:alternate\s+)?stylesheet'|(?:alternate\s+)?stylesheet)[^>]*>$`)
	formMethodRe    = regexp.MustCompile(`(?is)(<form[^>]*)method\s*=\s*(?:"get"|'get'|get)([^>]*>)`)
	inputTypeRe     = regexp.MustCompile(`(?is)(<input[^>]*)type\s*=\s*(?:"text"|'text'|text)([^>]*>)`)
	booleanAttrRe   = regexp.MustCompile(`(?is)(<\w+[^>]*)(checked|selected|disabled|readonly)\s*=\s*(?:"\w*"|'\w*'|\w*)([^>]*>)`)

	httpProtocolRe  = regexp.MustCompile(`(?is)(<[^>]+?(?:href|src|cite|action)\s*=\s*['"])http:(//[^>]+?>)`)
	httpsProtocolRe = regexp.MustCompile(`(?is)(<[^>]+?(?:href|src|cite|action)\s*=\s*['"])https:(//[^>]+?>)`)
	relExternalRe   = regexp.MustCompile(`(?is)^<[^>]*rel\s*=\s*(?:"(?:alternate\s+)?external"|'(?:alternate\s+)?external'|(?:alternate\s+)?external)[^>]*>$`)

	eventJSProtocolRe = regexp.MustCompile(`(?is)^javascript:\s*(.+)$`)

	// Whitespace between tags, in all four adjacency combinations of real
	// tags and placeholder tokens.
	intertagTagTagRe = regexp.MustCompile(`(?s)>\s+<`)
	intertagTagPhRe  = regexp.MustCompile(`(?s)>\s+%%%~`)
	intertagPhTagRe  = regexp.MustCompile(`(?s)~%%%\s+<`)
	intertagPhPhRe   = regexp.MustCompile(`(?s)~%%%\s+%%%~`)

	multiSpaceRe = regexp.MustCompile(`\s+`)

	// A complete tag, used to scope in-tag rewrites.
	tagRe = regexp.MustCompile(`<[^>]+>`)

	tagPropertyRe          = regexp.MustCompile(`(\s\w+)\s*=\s*`)
	tagEndSpaceRe          = regexp.MustCompile(`(?s)(<[^>]+?)\s+(/?>)`)
	tagLastUnquotedValueRe = regexp.MustCompile(`(?i)=\s*[a-z0-9_-]+$`)
	tagQuoteRe             = regexp.MustCompile(`(?i)\s*=\s*(?:"([a-z0-9_-]+)"|'([a-z0-9_-]+)')(/?)`)

	surroundingSpacesMinRe = surroundingSpacesPattern(BlockTagsMin)
	surroundingSpacesMaxRe = surroundingSpacesPattern(BlockTagsMax)
	surroundingSpacesAllRe = regexp.MustCompile(`(?is)\s*(<[^>]+>)\s*`)
)

func surroundingSpacesPattern(tags string) *regexp.Regexp {
	names := strings.Split(tags, ",")
	for i, name := range names {
		names[i] = regexp.QuoteMeta(strings.TrimSpace(name))
	}
	return regexp.MustCompile(`(?is)\s*(</?(?:` + strings.Join(names, "|") + `)(?:>|[\s/][^>]*>))\s*`)
}
