// Package textfmt cleans ticket summaries, entry notes and the links inside
// them for display in reports.
package textfmt

import (
	"regexp"
	"strings"

	"github.com/Tiliavir/cwr/internal/model"
)

// NotAvailable is shown in place of an empty summary.
const NotAvailable = "N/A"

// doNotBillPhrases are dispatcher markers that must not reach a customer
// report. Longer phrases come first so their brackets are removed with them.
var doNotBillPhrases = []string{
	"(DONT ADD TIME speak with Chris)",
	"[DONT ADD TIME speak with Chris]",
	"(DONT ADD TIME)",
	"[DONT ADD TIME]",
	"DONT ADD TIME",
	"(speak with Chris)",
	"[speak with Chris]",
	"speak with Chris",
}

var doNotBillPatterns = compilePhrases(doNotBillPhrases)

func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(p)))
	}
	return out
}

// CleanTicketSummary strips do-not-bill markers from a ticket summary, in any
// letter case. Empty results become "N/A".
func CleanTicketSummary(summary string) string {
	if summary == "" {
		return NotAvailable
	}
	cleaned := summary
	for _, re := range doNotBillPatterns {
		cleaned = strings.TrimSpace(re.ReplaceAllLiteralString(cleaned, ""))
	}
	cleaned = strings.ReplaceAll(cleaned, "()", "")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "[]", ""))
	if cleaned == "" {
		return NotAvailable
	}
	return cleaned
}

// truncationMarker replaces the tail cut off by ShortenURL.
const truncationMarker = " [...]"

// ShortenURL cuts a line holding a SharePoint document link at its first
// "?sourcedoc=" or, failing that, its first "&file=".
func ShortenURL(line string) string {
	if !strings.Contains(strings.ToLower(line), "sharepoint.com") {
		return line
	}
	for _, marker := range []string{"?sourcedoc=", "&file="} {
		if i := strings.Index(line, marker); i >= 0 {
			return line[:i] + truncationMarker
		}
	}
	return line
}

// MaxURLLength is the longest external link left verbatim by ProcessURLs.
const MaxURLLength = 50

var (
	sharePointURL = regexp.MustCompile(`https://[A-Za-z0-9-]+\.sharepoint\.com/[^\s)]+`)
	fileParam     = regexp.MustCompile(`file=([^&]+)`)
	anyURL        = regexp.MustCompile(`https?://(?:[a-zA-Z0-9$-_@.&+!*\\(),]|%[0-9a-fA-F]{2})+`)
)

// ProcessURLs replaces SharePoint links with a short placeholder naming the
// document, then replaces any other link longer than MaxURLLength with
// "[External Link]".
func ProcessURLs(text string) string {
	text = sharePointURL.ReplaceAllStringFunc(text, sharePointPlaceholder)
	return anyURL.ReplaceAllStringFunc(text, func(url string) string {
		if len(url) > MaxURLLength {
			return "[External Link]"
		}
		return url
	})
}

func sharePointPlaceholder(url string) string {
	m := fileParam.FindStringSubmatch(url)
	if m == nil {
		return "[SharePoint Link]"
	}
	name := strings.ReplaceAll(m[1], "%20", " ")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".docx")
	return "[SharePoint Doc: " + name + "]"
}

// FormatDetail builds the multi-line detail text of a row: an optional
// "Onsite Support - <project>" line followed by the note lines, each marked
// with "# ".
func FormatDetail(notes string, project *model.NamedRef) string {
	var lines []string
	if project != nil {
		name, _, _ := strings.Cut(project.Name, " - ")
		if name != "" {
			lines = append(lines, "Onsite Support - "+name)
		}
	}
	if notes != "" {
		for _, line := range strings.Split(ProcessURLs(notes), "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !strings.HasPrefix(line, "#") {
				line = "# " + line
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// DashLines splits raw notes into trimmed, non-blank lines with SharePoint
// links shortened, each starting with "- ".
func DashLines(notes string) []string {
	var lines []string
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = ShortenURL(line)
		if !strings.HasPrefix(line, "-") {
			line = "- " + line
		}
		lines = append(lines, line)
	}
	return lines
}
