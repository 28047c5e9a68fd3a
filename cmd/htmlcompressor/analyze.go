package main

import (
	"fmt"
	"io"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/hazendaz/htmlcompressor/css"
	"github.com/hazendaz/htmlcompressor/html"
	"github.com/hazendaz/htmlcompressor/js"
)

// analysisStep enables one more compressor setting on top of the previous ones.
type analysisStep struct {
	descr string
	apply func(*html.Compressor)
}

var analysisSteps = []analysisStep{
	{"Comments removed", func(c *html.Compressor) { c.KeepComments = false }},
	{"Multiple spaces removed", func(c *html.Compressor) { c.KeepMultiSpaces = false }},
	{"No spaces between tags", func(c *html.Compressor) { c.RemoveIntertagSpaces = true }},
	{"No surround spaces (min)", func(c *html.Compressor) { c.RemoveSurroundingSpaces = html.BlockTagsMin }},
	{"No surround spaces (max)", func(c *html.Compressor) { c.RemoveSurroundingSpaces = html.BlockTagsMax }},
	{"No surround spaces (all)", func(c *html.Compressor) { c.RemoveSurroundingSpaces = html.AllTags }},
	{"Quotes removed from tags", func(c *html.Compressor) { c.RemoveQuotes = true }},
	{"<link> attr. removed", func(c *html.Compressor) { c.RemoveLinkAttributes = true }},
	{"<style> attr. removed", func(c *html.Compressor) { c.RemoveStyleAttributes = true }},
	{"<script> attr. removed", func(c *html.Compressor) { c.RemoveScriptAttributes = true }},
	{"<form> attr. removed", func(c *html.Compressor) { c.RemoveFormAttributes = true }},
	{"<input> attr. removed", func(c *html.Compressor) { c.RemoveInputAttributes = true }},
	{"Simple boolean attributes", func(c *html.Compressor) { c.SimpleBooleanAttributes = true }},
	{"Simple doctype", func(c *html.Compressor) { c.SimpleDoctype = true }},
	{"Remove js pseudo-protocol", func(c *html.Compressor) { c.RemoveJavaScriptProtocol = true }},
	{"Remove http protocol", func(c *html.Compressor) { c.RemoveHTTPProtocol = true }},
	{"Remove https protocol", func(c *html.Compressor) { c.RemoveHTTPSProtocol = true }},
	{"Compress inline CSS", func(c *html.Compressor) { c.CSS = &css.Compressor{} }},
	{"Compress inline JS", func(c *html.Compressor) { c.JS = &js.Compressor{} }},
}

// runAnalysis compresses each input with progressively more settings enabled
// and prints the size gain of every step.
func runAnalysis(inputs []string) int {
	if len(inputs) == 0 {
		inputs = []string{""} // stdin
	}
	for _, input := range inputs {
		fr, err := openInputFile(input)
		if err != nil {
			Error.Println(err)
			return 1
		}
		b, err := io.ReadAll(fr)
		fr.Close()
		if err != nil {
			Error.Println(err)
			return 1
		}
		if input != "" {
			fmt.Println(input)
		}
		analyze(string(b))
	}
	return 0
}

func analyze(source string) {
	originalSize := len(source)

	// start from a compressor with every setting disabled
	c := &html.Compressor{Options: html.Options{
		KeepComments:    true,
		KeepMultiSpaces: true,
	}}

	printAnalysisHeader()
	fmt.Println(formatAnalysisLine("Compression disabled", originalSize, originalSize, originalSize))
	prevSize := originalSize

	result, _ := c.Compress(source)
	fmt.Println(formatAnalysisLine("All settings disabled", originalSize, len(result), prevSize))
	prevSize = len(result)

	for _, step := range analysisSteps {
		step.apply(c)
		result, _ = c.Compress(source)
		fmt.Println(formatAnalysisLine(step.descr, originalSize, len(result), prevSize))
		prevSize = len(result)
	}
	printAnalysisFooter()
}

func printAnalysisHeader() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%-25s | %-16s | %-16s | %-12s |\n", "         Setting", "Incremental Gain", "   Total Gain", " Page Size")
	fmt.Println(strings.Repeat("=", 80))
}

func printAnalysisFooter() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("Each consecutive compressor setting is applied on top of previous ones.")
	fmt.Println("All sizes are in bytes.")
}

func formatAnalysisLine(descr string, originalSize, compressedSize, prevSize int) string {
	return fmt.Sprintf("%-25s | %16s | %16s | %12s |", descr,
		formatDecrease(prevSize, compressedSize),
		formatDecrease(originalSize, compressedSize),
		humanize.Comma(int64(compressedSize)))
}

func formatDecrease(originalSize, compressedSize int) string {
	ratio := 0.0
	if 0 < originalSize {
		ratio = 1.0 - float64(compressedSize)/float64(originalSize)
	}
	return fmt.Sprintf("%s (%.1f%%)", humanize.Comma(int64(originalSize-compressedSize)), ratio*100)
}
