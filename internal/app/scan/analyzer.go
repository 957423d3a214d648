package scan

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/repoguard/api/internal/infra/llm"
)

// cleanMarker is the literal phrase the model is instructed to emit when a
// file has no findings. Classification is a substring match on it; existing
// clients depend on this contract, brittle as it is.
const cleanMarker = "No vulnerabilities found"

// maxAnalysisTokens bounds the model's response per file.
const maxAnalysisTokens = 4096

// analysisPrompt is the fixed-structure prompt sent per file. The two
// placeholders are the file's relative path and its full content.
const analysisPrompt = `<|im_start|>system
You are a security expert analyzing code for vulnerabilities. For each vulnerability found, provide:
1. File name
2. Line number (if applicable)
3. Description of the vulnerability
4. Severity level (High, Medium, Low)
5. Recommended fix

If no vulnerabilities are found, simply state "No vulnerabilities found in this file."
<|im_end|>

<|im_start|>user
Analyze the following code for security vulnerabilities:

File: %s
Code:
` + "```" + `
%s
` + "```" + `

Assistant:`

type outcomeKind int

const (
	outcomeError outcomeKind = iota
	outcomeEmpty
	outcomeClean
	outcomeVulnerable
)

// fileOutcome is the per-file analysis result. Exactly one of the four
// kinds applies; err is set only for outcomeError.
type fileOutcome struct {
	kind     outcomeKind
	analysis string
	err      error
}

// buildPrompt renders the analysis prompt for one file.
func buildPrompt(relPath, content string) string {
	return fmt.Sprintf(analysisPrompt, relPath, content)
}

// analyzeFile reads one candidate file and classifies it. It never returns
// an error to the pipeline: every failure (read, model invocation, response
// handling) is folded into an outcomeError so the session can continue with
// the next file.
func (s *Service) analyzeFile(ctx context.Context, relPath, absPath string) fileOutcome {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fileOutcome{kind: outcomeError, err: err}
	}

	// Tolerate undecodable bytes instead of failing the file.
	content := strings.ToValidUTF8(string(data), "")
	if strings.TrimSpace(content) == "" {
		return fileOutcome{kind: outcomeEmpty}
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		UserPrompt: buildPrompt(relPath, content),
		MaxTokens:  maxAnalysisTokens,
	})
	if err != nil {
		return fileOutcome{kind: outcomeError, err: err}
	}

	// Empty responses and responses carrying the marker phrase are clean;
	// any other text is a finding, verbatim.
	if resp.Content == "" || strings.Contains(resp.Content, cleanMarker) {
		return fileOutcome{kind: outcomeClean}
	}

	return fileOutcome{kind: outcomeVulnerable, analysis: resp.Content}
}
