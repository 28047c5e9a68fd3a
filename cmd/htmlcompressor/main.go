package main

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/matryer/try"
	"github.com/tdewolff/argp"

	"github.com/hazendaz/htmlcompressor/css"
	"github.com/hazendaz/htmlcompressor/html"
	"github.com/hazendaz/htmlcompressor/js"
	"github.com/hazendaz/htmlcompressor/xml"
)

// Version is the current htmlcompressor version.
var Version = "built from source"

var extMap = map[string]string{
	"htm":   "html",
	"html":  "html",
	"xhtml": "html",
	"rss":   "xml",
	"svg":   "xml",
	"xml":   "xml",
}

var (
	help               bool
	hidden             bool
	matches            []string
	matchesRegexp      []*regexp.Regexp
	recursive          bool
	quiet              bool
	verbose            int
	version            bool
	watch              bool
	filetype           string
	preserve           []string
	preserveMode       bool
	preserveTimestamps bool
	showStats          bool

	htmlCompressor *html.Compressor
	xmlCompressor  *xml.Compressor

	totals struct {
		sync.Mutex
		stats html.Statistics
		files int
	}
)

type Matches struct {
	matches *[]string
}

func (scanner Matches) Scan(s []string) (int, error) {
	n := 0
	for _, item := range s {
		if strings.HasPrefix(item, "-") {
			break
		}
		*scanner.matches = append(*scanner.matches, item)
		n++
	}
	return n, nil
}

func (typenamer Matches) TypeName() string {
	return "[]string"
}

// Task is a single file compression task.
type Task struct {
	root string
	src  string
	dst  string
}

// NewTask returns a new Task.
func NewTask(root, input, output string) (Task, error) {
	if len(output) != 0 && (output == "." || output[len(output)-1] == os.PathSeparator) {
		rel, err := filepath.Rel(root, input)
		if err != nil {
			return Task{}, err
		}
		output = filepath.Join(output, rel)
	}
	return Task{root, input, output}, nil
}

// Loggers.
var (
	Error   *log.Logger
	Warning *log.Logger
	Info    *log.Logger
)

func main() {
	// os.Exit doesn't execute pending defer calls, this is fixed by encapsulating run()
	os.Exit(run())
}

func run() int {
	var inputs []string
	var output string
	var analyze bool
	var rulesFile string

	opts := html.Options{}
	var compressJS, compressCSS bool
	var jsKeepComments, cssKeepComments bool
	var preservePHP, preserveServerScript, preserveSSI bool
	var keepIntertagSpaces bool

	// non-zero defaults, argp takes them from the destination values
	preserve = []string{"mode", "timestamps"}

	f := argp.New("htmlcompressor")
	f.AddRest(&inputs, "inputs", "Input files or directories, leave blank to use stdin")
	f.AddOpt(&output, "o", "output", "Output file or directory, leave blank to use stdout")
	f.AddOpt(&filetype, "t", "type", "Filetype (html or xml), optional when specifying inputs")
	f.AddOpt(Matches{&matches}, "m", "match", "Filename matching pattern, only matching filenames are processed")
	f.AddOpt(&recursive, "r", "recursive", "Recursively compress directories")
	f.AddOpt(&hidden, "", "all", "Compress all files, including hidden files and files in hidden directories")
	f.AddOpt(&quiet, "q", "quiet", "Quiet mode to suppress all output")
	f.AddOpt(argp.Count{I: &verbose}, "v", "verbose", "Verbose mode, set twice for more verbosity")
	f.AddOpt(&watch, "w", "watch", "Watch files and compress upon changes")
	f.AddOpt(&preserve, "", "preserve", "Preserve options (mode, timestamps, all)")
	f.AddOpt(&analyze, "a", "analyze", "Print a compression analysis report instead of compressing")
	f.AddOpt(&showStats, "s", "stats", "Print total compression statistics")
	f.AddOpt(&rulesFile, "p", "patterns", "YAML file with custom preservation rules")
	f.AddOpt(&version, "", "version", "Version")

	f.AddOpt(&opts.KeepComments, "", "preserve-comments", "Preserve comments")
	f.AddOpt(&opts.KeepMultiSpaces, "", "preserve-multi-spaces", "Preserve multiple spaces")
	f.AddOpt(&opts.PreserveLineBreaks, "", "preserve-line-breaks", "Preserve line breaks")
	f.AddOpt(&preservePHP, "", "preserve-php", "Preserve <?php ... ?> blocks")
	f.AddOpt(&preserveServerScript, "", "preserve-server-script", "Preserve <% ... %> blocks")
	f.AddOpt(&preserveSSI, "", "preserve-ssi", "Preserve SSI <!--# ... --> blocks")
	f.AddOpt(&keepIntertagSpaces, "", "preserve-intertag-spaces", "Preserve spaces between tags (xml only)")
	f.AddOpt(&opts.RemoveIntertagSpaces, "", "remove-intertag-spaces", "Remove spaces between tags")
	f.AddOpt(&opts.RemoveQuotes, "", "remove-quotes", "Remove unneeded quotes from attribute values")
	f.AddOpt(&opts.RemoveSurroundingSpaces, "", "remove-surrounding-spaces", "Remove spaces around tags: min, max, all or a comma separated tag list")
	f.AddOpt(&opts.SimpleDoctype, "", "simple-doctype", "Replace the doctype with <!DOCTYPE html>")
	f.AddOpt(&opts.SimpleBooleanAttributes, "", "simple-bool-attr", "Shorten boolean attributes (checked=\"checked\" to checked)")
	f.AddOpt(&opts.RemoveScriptAttributes, "", "remove-script-attr", "Remove default attributes from script tags")
	f.AddOpt(&opts.RemoveStyleAttributes, "", "remove-style-attr", "Remove default attributes from style tags")
	f.AddOpt(&opts.RemoveLinkAttributes, "", "remove-link-attr", "Remove default attributes from link tags")
	f.AddOpt(&opts.RemoveFormAttributes, "", "remove-form-attr", "Remove default attributes from form tags")
	f.AddOpt(&opts.RemoveInputAttributes, "", "remove-input-attr", "Remove default attributes from input tags")
	f.AddOpt(&opts.RemoveJavaScriptProtocol, "", "remove-js-protocol", "Remove the javascript: pseudo-protocol from event handlers")
	f.AddOpt(&opts.RemoveHTTPProtocol, "", "remove-http-protocol", "Remove the http: protocol from attribute values")
	f.AddOpt(&opts.RemoveHTTPSProtocol, "", "remove-https-protocol", "Remove the https: protocol from attribute values")
	f.AddOpt(&compressJS, "", "compress-js", "Compress inline scripts")
	f.AddOpt(&compressCSS, "", "compress-css", "Compress inline styles")
	f.AddOpt(&jsKeepComments, "", "js-keep-comments", "Preserve comments in inline scripts")
	f.AddOpt(&cssKeepComments, "", "css-keep-comments", "Preserve comments in inline styles")
	f.Parse()

	if version {
		if !quiet {
			fmt.Printf("htmlcompressor %s\n", Version)
		}
		return 0
	}

	if len(inputs) == 1 && inputs[0] == "-" {
		inputs = inputs[:0] // stdin
	} else if output == "-" {
		output = "" // stdout
	}
	useStdin := len(inputs) == 0

	Error = log.New(io.Discard, "", 0)
	Warning = log.New(io.Discard, "", 0)
	Info = log.New(io.Discard, "", 0)
	if !quiet {
		Error = log.New(os.Stderr, "ERROR: ", 0)
		if 0 < verbose {
			Warning = log.New(os.Stderr, "WARNING: ", 0)
		}
		if 1 < verbose {
			Info = log.New(os.Stderr, "INFO: ", 0)
		}
	}

	// compile matches
	var err error
	if 0 < len(matches) {
		matchesRegexp = make([]*regexp.Regexp, len(matches))
		for i, pattern := range matches {
			if matchesRegexp[i], err = compilePattern(pattern); err != nil {
				Error.Println(err)
				return 1
			}
		}
	}

	if filetype != "" && filetype != "html" && filetype != "xml" {
		Error.Println("unknown filetype", filetype)
		return 1
	}

	if useStdin && (watch || recursive) {
		if watch {
			Error.Println("--watch doesn't work with stdin, specify input")
		}
		if recursive {
			Error.Println("--recursive doesn't work with stdin, specify input")
		}
		return 1
	} else if output == "" && recursive {
		Error.Println("--recursive doesn't work with stdout, specify output")
		return 1
	}
	if filetype == "" && useStdin {
		Error.Println("must specify --type for stdin")
		return 1
	}
	if filetype == "" {
		if !recursive {
			okAll := true
			for _, input := range inputs {
				if fileType(input) == "" {
					Error.Println("cannot infer filetype from extension in", input, ", set --type explicitly")
					okAll = false
				}
			}
			if !okAll {
				return 1
			}
		}
		Info.Println("infer filetype from file extensions")
	} else {
		Info.Println("use filetype", filetype)
	}
	if f.IsSet("preserve") && (useStdin || output == "") {
		Error.Println("--preserve cannot be used together with stdin or stdout")
		return 1
	}
	preserveMode, preserveTimestamps = parsePreserve(preserve)

	if preservePHP {
		opts.Preserve = append(opts.Preserve, html.PHPTagPattern)
	}
	if preserveServerScript {
		opts.Preserve = append(opts.Preserve, html.ServerScriptTagPattern)
	}
	if preserveSSI {
		opts.Preserve = append(opts.Preserve, html.ServerSideIncludePattern)
	}
	if rulesFile != "" {
		patterns, err := loadPreserveRules(rulesFile)
		if err != nil {
			Error.Println(err)
			return 1
		}
		opts.Preserve = append(opts.Preserve, patterns...)
	}

	htmlCompressor = &html.Compressor{Options: opts, Stats: showStats}
	if compressJS {
		htmlCompressor.JS = &js.Compressor{KeepComments: jsKeepComments}
	}
	if compressCSS {
		htmlCompressor.CSS = &css.Compressor{KeepComments: cssKeepComments}
	}
	xmlCompressor = &xml.Compressor{
		KeepComments:       opts.KeepComments,
		KeepIntertagSpaces: keepIntertagSpaces,
	}

	////////////////

	if analyze {
		return runAnalysis(inputs)
	}

	for i, input := range inputs {
		if input == "-" {
			Error.Println("cannot mix files and stdin as input")
			return 1
		}
		inputs[i] = filepath.Clean(input)
		if input[len(input)-1] == os.PathSeparator {
			inputs[i] += string(os.PathSeparator)
		}
	}

	// set output file or directory, empty means stdout
	dirDst := false
	if output != "" {
		dirDst = IsDir(output)
		if !dirDst {
			if 1 < len(inputs) {
				Error.Printf("stat %v: no such file or directory\n", output)
				return 1
			} else if len(inputs) == 1 {
				if info, err := os.Lstat(inputs[0]); err == nil && info.Mode().IsDir() {
					dirDst = true
				}
			}
		}

		output = filepath.Clean(output)
		if dirDst {
			output += string(os.PathSeparator)
		}
	} else if 1 < len(inputs) {
		Error.Println("multiple input files need an output directory")
		return 1
	}
	if output == "" {
		Info.Println("compress to stdout")
	} else if !dirDst {
		Info.Println("compress to output file", output)
	} else if output == "."+string(os.PathSeparator) {
		Info.Println("compress to current working directory")
	} else {
		Info.Println("compress to output directory", output)
	}
	if useStdin {
		Info.Println("compress from stdin")
	}

	var tasks []Task
	var roots []string
	if useStdin {
		task, err := NewTask("", "", output)
		if err != nil {
			Error.Println(err)
			return 1
		}
		tasks = append(tasks, task)
		roots = append(roots, "")
	} else {
		tasks, roots, err = createTasks(inputs, output)
		if err != nil {
			Error.Println(err)
			return 1
		}
	}

	// make output directory
	if dirDst {
		if err := os.MkdirAll(output, 0777); err != nil {
			Error.Println(err)
			return 1
		}
	}

	////////////////

	fails := 0
	start := time.Now()
	if !watch && (len(tasks) == 1 || 0 < verbose) {
		for _, task := range tasks {
			if ok := compress(task); !ok {
				fails++
			}
		}
	} else {
		numWorkers := runtime.NumCPU()
		if 0 < verbose {
			numWorkers = 1
		} else if numWorkers < 4 {
			numWorkers = 4
		}

		chanTasks := make(chan Task, 20)
		chanFails := make(chan int, numWorkers)
		for n := 0; n < numWorkers; n++ {
			go compressWorker(chanTasks, chanFails)
		}

		if !watch {
			for _, task := range tasks {
				chanTasks <- task
			}
		} else {
			watcher, err := NewWatcher(recursive)
			if err != nil {
				Error.Println(err)
				return 1
			}
			defer watcher.Close()
			changes := watcher.Run()

			for _, filename := range inputs {
				watcher.AddPath(filename)
			}

			for _, task := range tasks {
				watcher.IgnoreNext(task.dst)
				chanTasks <- task
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			for changes != nil {
				select {
				case <-c:
					watcher.Close()
				case file, ok := <-changes:
					if !ok {
						changes = nil
						break
					}
					file = filepath.Clean(file)
					if !fileMatches(file) {
						break
					}

					// find longest common path among roots
					root := ""
					for _, path := range roots {
						pathRel, err1 := filepath.Rel(path, file)
						rootRel, err2 := filepath.Rel(root, file)
						if err2 != nil || err1 == nil && len(pathRel) < len(rootRel) {
							root = path
						}
					}

					task, err := NewTask(root, file, output)
					if err != nil {
						Error.Println(err)
						return 1
					}
					watcher.IgnoreNext(task.dst) // skip change on output
					chanTasks <- task
				}
			}
		}

		close(chanTasks)
		for n := 0; n < numWorkers; n++ {
			fails += <-chanFails
		}
	}

	if !watch {
		Info.Println("finished in", time.Since(start))
	}
	if showStats && !quiet {
		printTotals()
	}
	if 0 < fails {
		return 1
	}
	return 0
}

func compressWorker(chanTasks <-chan Task, chanFails chan<- int) {
	fails := 0
	for task := range chanTasks {
		if ok := compress(task); !ok {
			fails++
		}
	}
	chanFails <- fails
}

// parsePreserve expands the --preserve option list.
func parsePreserve(options []string) (mode, timestamps bool) {
	for _, option := range options {
		switch option {
		case "all":
			mode = true
			timestamps = true
		case "mode":
			mode = true
		case "timestamps":
			timestamps = true
		}
	}
	return
}

// compilePattern returns a compiled glob or, with a ~ prefix, regular expression.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if len(pattern) == 0 || pattern[0] != '~' {
		if strings.HasPrefix(pattern, `\~`) {
			pattern = pattern[1:]
		}
		pattern = regexp.QuoteMeta(pattern)
		pattern = strings.ReplaceAll(pattern, `\*\*`, `.*`)
		pattern = strings.ReplaceAll(pattern, `\*`, fmt.Sprintf(`[^%c]*`, filepath.Separator))
		pattern = strings.ReplaceAll(pattern, `\?`, fmt.Sprintf(`[^%c]?`, filepath.Separator))
		pattern = "^" + pattern + "$"
	} else {
		pattern = pattern[1:]
	}
	return regexp.Compile(pattern)
}

// fileType returns html or xml for the filename, either forced by --type or
// inferred from the extension, or an empty string when unknown.
func fileType(filename string) string {
	if filetype != "" {
		return filetype
	}
	ext := filepath.Ext(filename)
	if 0 < len(ext) {
		ext = ext[1:]
	}
	return extMap[strings.ToLower(ext)]
}

func fileFilter(filename string) bool {
	if 0 < len(matches) {
		match := false
		base := filepath.Base(filename)
		for _, re := range matchesRegexp {
			if re.MatchString(base) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}

func fileMatches(filename string) bool {
	return fileFilter(filename) && fileType(filename) != ""
}

func createTasks(inputs []string, output string) ([]Task, []string, error) {
	tasks := []Task{}
	roots := []string{}
	for _, input := range inputs {
		root := filepath.Clean(filepath.Dir(input))
		input = filepath.Clean(input)

		info, err := os.Stat(input)
		if err != nil {
			return nil, nil, err
		}

		if info.Mode().IsRegular() {
			if fileFilter(input) { // don't filter on extension for explicit inputs
				task, err := NewTask(root, input, output)
				if err != nil {
					return nil, nil, err
				}
				tasks = append(tasks, task)
			}
		} else if info.Mode().IsDir() {
			if !recursive {
				Warning.Println("--recursive not specified, omitting directory", input)
				continue
			}

			walkFn := func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				} else if d.Name() == "." || d.Name() == ".." {
					return nil
				} else if d.Name() == "" || !hidden && d.Name()[0] == '.' {
					if d.IsDir() {
						return fs.SkipDir
					}
					return nil
				}

				if d.Type().IsRegular() && fileMatches(path) {
					task, err := NewTask(root, path, output)
					if err != nil {
						return err
					}
					tasks = append(tasks, task)
				}
				return nil
			}
			if err := filepath.WalkDir(input, walkFn); err != nil {
				return nil, nil, err
			}
			roots = append(roots, root)
		} else {
			return nil, nil, fmt.Errorf("not a file or directory %s", input)
		}
	}
	return tasks, roots, nil
}

func compress(t Task) bool {
	srcName := t.src
	if srcName == "" {
		srcName = "stdin"
	}
	dstName := t.dst
	if dstName == "" {
		dstName = "stdout"
	} else {
		// rename original when overwriting
		if sameFile, _ := SameFile(t.src, t.dst); sameFile {
			t.src += ".bak"
			err := try.Do(func(attempt int) (bool, error) {
				ferr := os.Rename(t.dst, t.src)
				return attempt < 5, ferr
			})
			if err != nil {
				Error.Println(err)
				return false
			}
		}
	}

	fr, err := openInputFile(t.src)
	if err != nil {
		Error.Println(err)
		return false
	}

	b, err := io.ReadAll(fr)
	fr.Close()
	if err != nil {
		Error.Println("cannot compress "+srcName+":", err)
		return false
	}

	success := true
	startTime := time.Now()
	var result string
	switch fileType(t.src) {
	case "xml":
		result, err = xmlCompressor.Compress(string(b))
	default:
		hc := htmlCompressor.Copy()
		result, err = hc.Compress(string(b))
		if showStats {
			addTotals(hc.Statistics())
		}
	}
	if err != nil {
		// the document was still produced, only sub-compression failed
		Warning.Println("cannot fully compress "+srcName+":", err)
	}

	fw, err := openOutputFile(t.dst)
	if err != nil {
		Error.Println(err)
		return false
	}
	_, err = io.WriteString(fw, result)
	fw.Close()
	if err != nil {
		Error.Println(err)
		success = false
	}

	if !quiet {
		dur := time.Since(startTime)
		rLen, wLen := len(b), len(result)
		speed := "Inf MB"
		if 0 < dur {
			speed = humanize.Bytes(uint64(float64(rLen) / dur.Seconds()))
		}
		ratio := 1.0
		if 0 < rLen {
			ratio = float64(wLen) / float64(rLen)
		}

		stats := fmt.Sprintf("(%9v, %6v, %6v, %5.1f%%, %6v/s)", dur, humanize.Bytes(uint64(rLen)), humanize.Bytes(uint64(wLen)), ratio*100, speed)
		if srcName != dstName {
			fmt.Println(stats, "-", srcName, "to", dstName)
		} else {
			fmt.Println(stats, "-", srcName)
		}
	}

	// remove original that was renamed, when overwriting files
	if t.src == t.dst+".bak" {
		if success {
			if err = os.Remove(t.src); err != nil {
				Error.Println(err)
				return false
			}
		} else {
			if err = os.Remove(t.dst); err != nil {
				Error.Println(err)
				return false
			} else if err = os.Rename(t.src, t.dst); err != nil {
				Error.Println(err)
				return false
			}
		}
		t.src = t.dst
	}
	preserveAttributes(t.src, t.root, t.dst)
	return success
}

func addTotals(s *html.Statistics) {
	if s == nil {
		return
	}
	totals.Lock()
	totals.stats.Original.Filesize += s.Original.Filesize
	totals.stats.Original.EmptyChars += s.Original.EmptyChars
	totals.stats.Original.InlineScriptSize += s.Original.InlineScriptSize
	totals.stats.Original.InlineStyleSize += s.Original.InlineStyleSize
	totals.stats.Original.InlineEventSize += s.Original.InlineEventSize
	totals.stats.Compressed.Filesize += s.Compressed.Filesize
	totals.stats.Compressed.EmptyChars += s.Compressed.EmptyChars
	totals.stats.Compressed.InlineScriptSize += s.Compressed.InlineScriptSize
	totals.stats.Compressed.InlineStyleSize += s.Compressed.InlineStyleSize
	totals.stats.Compressed.InlineEventSize += s.Compressed.InlineEventSize
	totals.stats.PreservedSize += s.PreservedSize
	totals.stats.Duration += s.Duration
	totals.files++
	totals.Unlock()
}

func printTotals() {
	totals.Lock()
	defer totals.Unlock()
	if totals.files == 0 {
		return
	}
	fmt.Printf("Compressed %d files in %v\n", totals.files, totals.stats.Duration)
	fmt.Println("Original:  ", totals.stats.Original.String())
	fmt.Println("Compressed:", totals.stats.Compressed.String())
	fmt.Println("Preserved: ", humanize.Comma(int64(totals.stats.PreservedSize)), "bytes")
}
