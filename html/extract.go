package html

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hazendaz/htmlcompressor"
)

// blocks holds the protected regions of a single Compress call, one ordered
// list per category. Placeholder indices equal list positions.
type blocks struct {
	cond      []string
	pre       []string
	textArea  []string
	script    []string
	style     []string
	event     []string
	skip      []string
	lineBreak []string
	user      [][]string
}

// extract replaces protected regions with placeholder tokens and returns the
// remaining skeleton. The passes run in a fixed order; every pass scans the
// output of the previous one, so placeholders inserted by an earlier pass are
// opaque to later ones. restore undoes the passes in the exact reverse order.
func (c *Compressor) extract(source string, b *blocks) (string, error) {
	// user patterns, in rule order, each in its own placeholder namespace
	for rule, re := range c.Preserve {
		b.user = append(b.user, nil)
		source = htmlcompressor.ReplaceAllSubmatchFunc(re, source, func(g []string) string {
			if strings.TrimSpace(g[0]) == "" {
				return g[0]
			}
			b.user[rule] = append(b.user[rule], g[0])
			return userPlaceholder(rule, len(b.user[rule])-1)
		})
	}

	// <!-- {{{ --> ... <!-- }}} --> skip blocks
	source = htmlcompressor.ReplaceAllSubmatchFunc(skipBlockRe, source, func(g []string) string {
		if strings.TrimSpace(g[1]) == "" {
			return g[0]
		}
		b.skip = append(b.skip, g[1])
		return placeholder("SKIP", len(b.skip)-1)
	})

	// Conditional comments. The body is compressed recursively with an
	// independently configured compressor, so the recursion never touches the
	// state of this call.
	var errs []error
	sub := c.clone()
	source = htmlcompressor.ReplaceAllSubmatchFunc(condCommentRe, source, func(g []string) string {
		if strings.TrimSpace(g[2]) == "" {
			return g[0]
		}
		body, err := sub.Compress(g[2])
		if err != nil {
			errs = append(errs, fmt.Errorf("conditional comment: %w", err))
		}
		b.cond = append(b.cond, g[1]+body+g[3])
		return placeholder("COND", len(b.cond)-1)
	})

	// inline event handlers, double-quoted then single-quoted
	extractEvent := func(g []string) string {
		if strings.TrimSpace(g[2]) == "" {
			return g[0]
		}
		b.event = append(b.event, g[2])
		return g[1] + placeholder("EVENT", len(b.event)-1) + g[3]
	}
	source = htmlcompressor.ReplaceAllSubmatchFunc(eventDoubleQuotedRe, source, extractEvent)
	source = htmlcompressor.ReplaceAllSubmatchFunc(eventSingleQuotedRe, source, extractEvent)

	// pre content
	source = htmlcompressor.ReplaceAllSubmatchFunc(preTagRe, source, func(g []string) string {
		if strings.TrimSpace(g[2]) == "" {
			return g[0]
		}
		b.pre = append(b.pre, g[2])
		return g[1] + placeholder("PRE", len(b.pre)-1) + g[3]
	})

	// script content, routed by the type attribute
	source = htmlcompressor.ReplaceAllSubmatchFunc(scriptRe, source, func(g []string) string {
		if strings.TrimSpace(g[2]) == "" {
			return g[0]
		}
		switch scriptType(g[1]) {
		case "", "text/javascript", "application/javascript":
			b.script = append(b.script, g[2])
			return g[1] + placeholder("SCRIPT", len(b.script)-1) + g[3]
		case "text/x-jquery-tmpl":
			// a template, compressed with the rest of the document
			return g[0]
		default:
			// an unknown script type is preserved opaquely and never handed
			// to the javascript sub-compressor
			b.skip = append(b.skip, g[2])
			return g[1] + placeholder("SKIP", len(b.skip)-1) + g[3]
		}
	})

	// style content
	source = htmlcompressor.ReplaceAllSubmatchFunc(styleRe, source, func(g []string) string {
		if strings.TrimSpace(g[2]) == "" {
			return g[0]
		}
		b.style = append(b.style, g[2])
		return g[1] + placeholder("STYLE", len(b.style)-1) + g[3]
	})

	// textarea content
	source = htmlcompressor.ReplaceAllSubmatchFunc(textAreaRe, source, func(g []string) string {
		if strings.TrimSpace(g[2]) == "" {
			return g[0]
		}
		b.textArea = append(b.textArea, g[2])
		return g[1] + placeholder("TEXTAREA", len(b.textArea)-1) + g[3]
	})

	// line breaks, so whitespace collapsing cannot remove them
	if c.PreserveLineBreaks {
		source = htmlcompressor.ReplaceAllSubmatchFunc(lineBreakRe, source, func(g []string) string {
			b.lineBreak = append(b.lineBreak, g[1])
			return placeholder("LT", len(b.lineBreak)-1)
		})
	}

	return source, errors.Join(errs...)
}

// scriptType returns the lowercased value of the type attribute in the given
// opening tag, or the empty string when there is none.
func scriptType(openTag string) string {
	m := typeAttrRe.FindStringSubmatch(openTag)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return strings.ToLower(g)
		}
	}
	return ""
}

// processBlocks rewrites extracted blocks in place before restoration: script
// and style content is handed to the configured sub-compressors, the
// javascript: protocol is removed from event handlers, and preserved sizes
// are accounted. A failing sub-compressor leaves its block unchanged and is
// reported in the returned error.
func (c *Compressor) processBlocks(b *blocks) error {
	if c.stats != nil {
		for _, blk := range b.pre {
			c.stats.PreservedSize += len(blk)
		}
		for _, blk := range b.textArea {
			c.stats.PreservedSize += len(blk)
		}
		for _, blk := range b.cond {
			c.stats.PreservedSize += len(blk)
		}
		for _, blk := range b.skip {
			c.stats.PreservedSize += len(blk)
		}
		for _, list := range b.user {
			for _, blk := range list {
				c.stats.PreservedSize += len(blk)
			}
		}
		for _, blk := range b.lineBreak {
			c.stats.PreservedSize += len(blk)
		}
		for _, blk := range b.script {
			c.stats.Original.InlineScriptSize += len(blk)
		}
		for _, blk := range b.style {
			c.stats.Original.InlineStyleSize += len(blk)
		}
		for _, blk := range b.event {
			c.stats.Original.InlineEventSize += len(blk)
		}
	}

	var errs []error
	errs = append(errs, c.subCompress(b.script, c.JS, "script")...)
	errs = append(errs, c.subCompress(b.style, c.CSS, "style")...)

	if c.RemoveJavaScriptProtocol {
		for i, blk := range b.event {
			if m := eventJSProtocolRe.FindStringSubmatch(blk); m != nil {
				blk = m[1]
			}
			b.event[i] = blk
			if c.stats != nil {
				c.stats.PreservedSize += len(blk)
			}
		}
	} else if c.stats != nil {
		for _, blk := range b.event {
			c.stats.PreservedSize += len(blk)
		}
	}

	if c.stats != nil {
		for _, blk := range b.script {
			c.stats.Compressed.InlineScriptSize += len(blk)
		}
		for _, blk := range b.style {
			c.stats.Compressed.InlineStyleSize += len(blk)
		}
		for _, blk := range b.event {
			c.stats.Compressed.InlineEventSize += len(blk)
		}
	}
	return errors.Join(errs...)
}

// subCompress runs the sub-compressor over every block in the list,
// unwrapping and rewrapping CDATA sections. Blocks that fail keep their
// original content.
func (c *Compressor) subCompress(list []string, sub htmlcompressor.Compressor, kind string) []error {
	if sub == nil {
		if c.stats != nil {
			for _, blk := range list {
				c.stats.PreservedSize += len(blk)
			}
		}
		return nil
	}

	var errs []error
	for i, blk := range list {
		inner := blk
		wrapped := false
		if m := cdataRe.FindStringSubmatch(inner); m != nil {
			wrapped = true
			inner = m[1]
		}
		out, err := sub.Compress(inner)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s block %d: %w", kind, i, err))
			continue
		}
		if wrapped {
			out = "<![CDATA[" + out + "]]>"
		}
		list[i] = out
	}
	return errs
}

// restore substitutes placeholders with their stored content, category by
// category, in the exact reverse of the extraction order. A placeholder whose
// index is out of range is left as literal text.
func restore(skeleton string, b *blocks) string {
	skeleton = restoreList(skeleton, lineBreakPlaceholderRe, b.lineBreak)
	skeleton = restoreList(skeleton, textAreaPlaceholderRe, b.textArea)
	skeleton = restoreList(skeleton, stylePlaceholderRe, b.style)
	skeleton = restoreList(skeleton, scriptPlaceholderRe, b.script)
	skeleton = restoreList(skeleton, prePlaceholderRe, b.pre)
	skeleton = restoreList(skeleton, eventPlaceholderRe, b.event)
	skeleton = restoreList(skeleton, condPlaceholderRe, b.cond)
	skeleton = restoreList(skeleton, skipPlaceholderRe, b.skip)
	for rule := len(b.user) - 1; rule >= 0; rule-- {
		skeleton = restoreList(skeleton, userPlaceholderPattern(rule), b.user[rule])
	}
	return skeleton
}

func restoreList(skeleton string, re *regexp.Regexp, list []string) string {
	if len(list) == 0 && !re.MatchString(skeleton) {
		return skeleton
	}
	return htmlcompressor.ReplaceAllSubmatchFunc(re, skeleton, func(g []string) string {
		i, err := strconv.Atoi(g[1])
		if err != nil || i >= len(list) {
			return g[0]
		}
		return list[i]
	})
}
