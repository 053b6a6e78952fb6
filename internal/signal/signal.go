// Package signal extracts typed ScanSignals from a skill bundle: whole-file
// text, markdown fences, URLs, suspicious path references, a structural
// fetch-and-pipe-execute check over fenced shell blocks, and metadata
// derived from the manifest and ingest warnings. It never interprets or
// executes any of it — signals are just text handed to the rule engine.
package signal

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"mvdan.cc/sh/v3/syntax"

	"github.com/gzhole/clawguard/internal/skill"
)

// Type enumerates the kinds of signal the rule engine can select on.
type Type string

const (
	TypeMarkdown  Type = "markdown"
	TypeCodeblock Type = "codeblock"
	TypeURL       Type = "url"
	TypePath      Type = "path"
	TypeFile      Type = "file"
	TypeMeta      Type = "meta"
)

// Signal is one unit of evidence offered to the rule engine.
type Signal struct {
	Type     Type
	Text     string
	File     string
	BaseLine int // 1-based line where Text begins in File; 0 when not file-scoped
}

var (
	urlPattern  = regexp.MustCompile(`https?://[^\s)"'<>]+`)
	pathPattern = regexp.MustCompile(`(^|\s)(\./|\.\./|scripts/|bin/|assets/)[\w./-]+`)
)

var markdownParser = goldmark.New()

// ExtractSignals walks every loaded text file in bundle plus its manifest
// and ingest warnings, in the order spec'd in §4.4.
func ExtractSignals(bundle *skill.Bundle) []Signal {
	var out []Signal

	for _, f := range bundle.Files {
		out = append(out, Signal{Type: TypeFile, Text: f.Content, File: f.Path, BaseLine: 1})

		if !strings.HasSuffix(strings.ToLower(f.Path), ".md") {
			continue
		}

		out = append(out, Signal{Type: TypeMarkdown, Text: f.Content, File: f.Path, BaseLine: 1})
		out = append(out, extractCodeFences(f.Path, f.Content)...)
		out = append(out, extractURLs(f.Path, f.Content)...)
		out = append(out, extractPaths(f.Path, f.Content)...)
	}

	out = append(out, metaSignals(bundle)...)
	return out
}

// extractCodeFences uses goldmark to find fenced code blocks and reports
// each one's content with baseLine set to the line the opening fence is on.
func extractCodeFences(filePath, content string) []Signal {
	source := []byte(content)
	reader := text.NewReader(source)
	root := markdownParser.Parser().Parse(reader)

	var out []Signal
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		lines := fcb.Lines()
		firstOffset := -1
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if firstOffset < 0 {
				firstOffset = seg.Start
			}
			buf.Write(seg.Value(source))
		}

		baseLine := 1
		if firstOffset >= 0 {
			// The fence opens on the line before the first content line.
			baseLine = lineForOffset(source, firstOffset) - 1
			if baseLine < 1 {
				baseLine = 1
			}
		}

		fenceText := buf.String()
		out = append(out, Signal{
			Type: TypeCodeblock, Text: fenceText, File: filePath, BaseLine: baseLine,
		})
		if detectShellPipeToInterpreter(fenceText) {
			out = append(out, Signal{
				Type: TypeMeta, Text: "shell_pipe_to_interpreter", File: filePath, BaseLine: baseLine,
			})
		}
		return ast.WalkContinue, nil
	})
	return out
}

// interpreterNames are the binaries a piped fetch-then-execute pattern
// typically hands its payload to.
var interpreterNames = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "dash": true, "ksh": true,
	"python": true, "python3": true, "perl": true, "ruby": true, "node": true,
}

// detectShellPipeToInterpreter parses text as a shell script with
// mvdan.cc/sh and reports whether it contains a pipeline whose last
// command is a bare interpreter invocation (`curl ... | sh`, `wget -qO- ...
// | bash`, `... | python`). This is the fetch-and-pipe-execute shape that a
// plain substring/regex match on the fence text can't distinguish from an
// interpreter merely being mentioned in prose. A fence that fails to parse
// as shell (e.g. it's actually Python or JSON) is not a shell pipeline and
// is silently skipped rather than treated as a parse error.
func detectShellPipeToInterpreter(fenceText string) bool {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(fenceText), "")
	if err != nil {
		return false
	}

	found := false
	syntax.Walk(file, func(n syntax.Node) bool {
		if found {
			return false
		}
		binCmd, ok := n.(*syntax.BinaryCmd)
		if !ok || binCmd.Op != syntax.Pipe {
			return true
		}
		call, ok := lastPipelineCall(binCmd)
		if !ok || len(call.Args) == 0 {
			return true
		}
		if name := wordLiteral(call.Args[0]); interpreterNames[name] {
			found = true
			return false
		}
		return true
	})
	return found
}

// lastPipelineCall returns the rightmost simple command in a (possibly
// chained) pipeline rooted at bc.
func lastPipelineCall(bc *syntax.BinaryCmd) (*syntax.CallExpr, bool) {
	stmt := bc.Y
	if next, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && next.Op == syntax.Pipe {
		return lastPipelineCall(next)
	}
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	return call, ok
}

// wordLiteral returns w's value when it is a plain literal (no
// substitution, quoting, or expansion), and "" otherwise.
func wordLiteral(w *syntax.Word) string {
	if len(w.Parts) != 1 {
		return ""
	}
	lit, ok := w.Parts[0].(*syntax.Lit)
	if !ok {
		return ""
	}
	return lit.Value
}

func extractURLs(filePath, content string) []Signal {
	var out []Signal
	for _, loc := range urlPattern.FindAllStringIndex(content, -1) {
		match := content[loc[0]:loc[1]]
		baseLine := lineForOffset([]byte(content), loc[0])
		out = append(out, Signal{Type: TypeURL, Text: match, File: filePath, BaseLine: baseLine})
	}
	return out
}

func extractPaths(filePath, content string) []Signal {
	var out []Signal
	for _, loc := range pathPattern.FindAllStringSubmatchIndex(content, -1) {
		// loc[0]/loc[1] bound the whole match (including any leading
		// whitespace captured by group 1); trim that off for the
		// reported match text.
		matchStart, matchEnd := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			matchStart = loc[3]
		}
		match := content[matchStart:matchEnd]
		baseLine := lineForOffset([]byte(content), matchStart)
		out = append(out, Signal{Type: TypePath, Text: match, File: filePath, BaseLine: baseLine})
	}
	return out
}

// metaSignals turns manifest flags and ingest warnings into meta signals.
func metaSignals(bundle *skill.Bundle) []Signal {
	var out []Signal
	for _, m := range bundle.Manifest {
		if m.IsExecutable {
			out = append(out, Signal{Type: TypeMeta, Text: "executable_file", File: m.Path})
		}
		if m.IsBinary {
			out = append(out, Signal{Type: TypeMeta, Text: "binary_file", File: m.Path})
		}
		if m.IsSymlink {
			out = append(out, Signal{Type: TypeMeta, Text: "symlink_entry", File: m.Path})
		}
		if m.IsArchive {
			out = append(out, Signal{Type: TypeMeta, Text: "nested_archive", File: m.Path})
		}
		if m.SkippedReason == skill.SkippedInvalidPath {
			out = append(out, Signal{
				Type: TypeMeta,
				Text: fmt.Sprintf("path_traversal_entry raw=%s", m.RawPath),
				File: m.Path,
			})
		}
	}
	for _, w := range bundle.IngestWarnings {
		out = append(out, Signal{Type: TypeMeta, Text: "ingest_warning: " + w})
	}
	return out
}

func lineForOffset(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}
