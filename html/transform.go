package html

import (
	"regexp"
	"strings"

	"github.com/hazendaz/htmlcompressor"
)

// transform applies the whitespace, comment and attribute rewrites to the
// placeholder skeleton. The steps run in a fixed order; each step is gated by
// its own option and is pure, so the whole transformation is the composition
// of the enabled steps.
func transform(skeleton string, o Options) string {
	skeleton = removeComments(skeleton, o)
	skeleton = simpleDoctype(skeleton, o)
	skeleton = removeScriptAttributes(skeleton, o)
	skeleton = removeStyleAttributes(skeleton, o)
	skeleton = removeLinkAttributes(skeleton, o)
	skeleton = removeFormAttributes(skeleton, o)
	skeleton = removeInputAttributes(skeleton, o)
	skeleton = simpleBooleanAttributes(skeleton, o)
	skeleton = removeHTTPProtocol(skeleton, o)
	skeleton = removeHTTPSProtocol(skeleton, o)
	skeleton = removeIntertagSpaces(skeleton, o)
	skeleton = removeMultiSpaces(skeleton, o)
	skeleton = removeSpacesInsideTags(skeleton)
	skeleton = removeQuotesInsideTags(skeleton, o)
	skeleton = removeSurroundingSpaces(skeleton, o)
	return strings.TrimSpace(skeleton)
}

func removeComments(s string, o Options) string {
	if o.KeepComments {
		return s
	}
	// conditional comments were extracted before this pass and are unaffected
	return commentRe.ReplaceAllString(s, "")
}

func simpleDoctype(s string, o Options) string {
	if !o.SimpleDoctype {
		return s
	}
	return doctypeRe.ReplaceAllString(s, "<!DOCTYPE html>")
}

func removeScriptAttributes(s string, o Options) string {
	if !o.RemoveScriptAttributes {
		return s
	}
	s = jsTypeAttrRe.ReplaceAllString(s, "$1$2")
	return jsLangAttrRe.ReplaceAllString(s, "$1$2")
}

func removeStyleAttributes(s string, o Options) string {
	if !o.RemoveStyleAttributes {
		return s
	}
	return styleTypeAttrRe.ReplaceAllString(s, "$1$2")
}

func removeLinkAttributes(s string, o Options) string {
	if !o.RemoveLinkAttributes {
		return s
	}
	return htmlcompressor.ReplaceAllSubmatchFunc(linkTypeAttrRe, s, func(g []string) string {
		// only links that declare a stylesheet relation
		if linkRelAttrRe.MatchString(g[0]) {
			return g[1] + g[2]
		}
		return g[0]
	})
}

func removeFormAttributes(s string, o Options) string {
	if !o.RemoveFormAttributes {
		return s
	}
	return formMethodRe.ReplaceAllString(s, "$1$2")
}

func removeInputAttributes(s string, o Options) string {
	if !o.RemoveInputAttributes {
		return s
	}
	return inputTypeRe.ReplaceAllString(s, "$1$2")
}

func simpleBooleanAttributes(s string, o Options) string {
	if !o.SimpleBooleanAttributes {
		return s
	}
	return booleanAttrRe.ReplaceAllString(s, "$1$2$3")
}

func removeHTTPProtocol(s string, o Options) string {
	if !o.RemoveHTTPProtocol {
		return s
	}
	return stripProtocol(s, httpProtocolRe)
}

func removeHTTPSProtocol(s string, o Options) string {
	if !o.RemoveHTTPSProtocol {
		return s
	}
	return stripProtocol(s, httpsProtocolRe)
}

func stripProtocol(s string, re *regexp.Regexp) string {
	return htmlcompressor.ReplaceAllSubmatchFunc(re, s, func(g []string) string {
		// tags marked rel="external" keep their absolute URL
		if relExternalRe.MatchString(g[0]) {
			return g[0]
		}
		return g[1] + g[2]
	})
}

func removeIntertagSpaces(s string, o Options) string {
	if !o.RemoveIntertagSpaces {
		return s
	}
	s = intertagTagTagRe.ReplaceAllString(s, "><")
	s = intertagTagPhRe.ReplaceAllString(s, ">%%%~")
	s = intertagPhTagRe.ReplaceAllString(s, "~%%%<")
	return intertagPhPhRe.ReplaceAllString(s, "~%%%%%%~")
}

func removeMultiSpaces(s string, o Options) string {
	if o.KeepMultiSpaces {
		return s
	}
	return multiSpaceRe.ReplaceAllString(s, " ")
}

// removeSpacesInsideTags removes spaces around the = of attribute assignments
// and trailing space before a closing > or />. When the last attribute value
// is unquoted and precedes a self-closing slash, one space is kept so the
// slash does not become part of the value.
func removeSpacesInsideTags(s string) string {
	s = tagRe.ReplaceAllStringFunc(s, func(tag string) string {
		return tagPropertyRe.ReplaceAllString(tag, "$1=")
	})
	return htmlcompressor.ReplaceAllSubmatchFunc(tagEndSpaceRe, s, func(g []string) string {
		if strings.HasPrefix(g[2], "/") && tagLastUnquotedValueRe.MatchString(g[1]) {
			return g[1] + " " + g[2]
		}
		return g[1] + g[2]
	})
}

func removeQuotesInsideTags(s string, o Options) string {
	if !o.RemoveQuotes {
		return s
	}
	return tagRe.ReplaceAllStringFunc(s, func(tag string) string {
		return htmlcompressor.ReplaceAllSubmatchFunc(tagQuoteRe, tag, func(g []string) string {
			val := g[1]
			if val == "" {
				val = g[2]
			}
			// reattach a following self-closing slash with a space
			if g[3] != "" {
				return "=" + val + " " + g[3]
			}
			return "=" + val
		})
	})
}

func removeSurroundingSpaces(s string, o Options) string {
	if o.RemoveSurroundingSpaces == "" {
		return s
	}
	var re *regexp.Regexp
	switch {
	case strings.EqualFold(o.RemoveSurroundingSpaces, BlockTagsMin):
		re = surroundingSpacesMinRe
	case strings.EqualFold(o.RemoveSurroundingSpaces, BlockTagsMax):
		re = surroundingSpacesMaxRe
	case strings.EqualFold(o.RemoveSurroundingSpaces, AllTags):
		re = surroundingSpacesAllRe
	default:
		re = surroundingSpacesPattern(o.RemoveSurroundingSpaces)
	}
	return re.ReplaceAllString(s, "$1")
}
