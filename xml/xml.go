// Package xml compresses XML documents by removing comments and whitespace
// between tags, while preserving CDATA sections byte-for-byte.
package xml

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hazendaz/htmlcompressor"
)

var (
	cdataRe            = regexp.MustCompile(`(?is)<!\[CDATA\[.*?\]\]>`)
	cdataPlaceholderRe = regexp.MustCompile(`%%%COMPRESS~CDATA~(\d+)%%%`)

	commentRe  = regexp.MustCompile(`(?is)<!--.*?-->`)
	intertagRe = regexp.MustCompile(`(?s)>\s+<`)

	tagRe         = regexp.MustCompile(`<[^>]+>`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	tagPropertyRe = regexp.MustCompile(`(\s\w+)\s*=\s*`)
	tagEndSpaceRe = regexp.MustCompile(`(?s)(<[^>]+?)\s+(/?>)`)
)

func cdataPlaceholder(index int) string {
	return "%%%COMPRESS~CDATA~" + strconv.Itoa(index) + "%%%"
}

// Compressor compresses XML documents. The zero value removes comments and
// intertag whitespace; both can be kept with the Keep fields.
type Compressor struct {
	// Disabled makes Compress return its input unchanged.
	Disabled bool

	// KeepComments keeps <!-- ... --> comments.
	KeepComments bool

	// KeepIntertagSpaces keeps whitespace between tags.
	KeepIntertagSpaces bool
}

// Compress compresses the given XML source and returns the result. The error
// is always nil and exists to satisfy the Compressor interface.
func (c *Compressor) Compress(source string) (string, error) {
	if c.Disabled || source == "" {
		return source, nil
	}

	var cdataBlocks []string
	source = htmlcompressor.ReplaceAllSubmatchFunc(cdataRe, source, func(g []string) string {
		cdataBlocks = append(cdataBlocks, g[0])
		return cdataPlaceholder(len(cdataBlocks) - 1)
	})

	source = c.processXML(source)

	source = htmlcompressor.ReplaceAllSubmatchFunc(cdataPlaceholderRe, source, func(g []string) string {
		i, err := strconv.Atoi(g[1])
		if err != nil || i >= len(cdataBlocks) {
			return g[0]
		}
		return cdataBlocks[i]
	})

	return strings.TrimSpace(source), nil
}

func (c *Compressor) processXML(xml string) string {
	if !c.KeepComments {
		xml = commentRe.ReplaceAllString(xml, "")
	}
	if !c.KeepIntertagSpaces {
		xml = intertagRe.ReplaceAllString(xml, "><")
	}
	return removeSpacesInsideTags(xml)
}

func removeSpacesInsideTags(xml string) string {
	xml = tagRe.ReplaceAllStringFunc(xml, func(tag string) string {
		tag = multiSpaceRe.ReplaceAllString(tag, " ")
		return tagPropertyRe.ReplaceAllString(tag, "$1=")
	})
	return tagEndSpaceRe.ReplaceAllString(xml, "$1$2")
}
