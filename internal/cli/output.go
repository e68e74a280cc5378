// Package cli renders shiori results for the terminal or for other programs.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/hyperjump/shiori/internal/assistant"
	"github.com/hyperjump/shiori/internal/indexer"
	"github.com/hyperjump/shiori/internal/models"
	"github.com/hyperjump/shiori/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one tab-separated line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// previewChars bounds the preview printed under each paper in text output.
const previewChars = 200

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	nameColor   = color.New(color.FgGreen, color.Bold)
	topicColor  = color.New(color.FgMagenta)
	dimColor    = color.New(color.FgHiBlack)
	warnColor   = color.New(color.FgYellow)
)

// ParseOutputFormat maps a --format value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes a paper or image search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", r.Rank, r.Score, r.Topic, r.Path)
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	noun := "papers"
	if response.Kind == models.KindImage {
		noun = "images"
	}
	if len(response.Results) == 0 {
		if response.Kind == models.KindImage {
			fmt.Fprintln(w, "No matching images found (index a folder with `shiori index-images <folder>` first).")
		} else {
			fmt.Fprintln(w, "No matching papers found.")
		}
		if response.Suggestion != "" {
			warnColor.Fprintf(w, "Did you mean %q?\n", response.Suggestion)
		}
		return
	}

	mode := ""
	if response.Mode != "" {
		mode = string(response.Mode) + ", "
	}
	headerColor.Fprintf(w, "Top %d %s for %q", len(response.Results), noun, response.Query)
	dimColor.Fprintf(w, " (%s%d matched, %dms)\n", mode, response.Total, response.QueryTime)
	for _, r := range response.Results {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d. ", r.Rank)
		nameColor.Fprint(w, r.Filename)
		if r.Topic != "" {
			fmt.Fprint(w, "  ")
			topicColor.Fprintf(w, "[%s]", r.Topic)
		}
		fmt.Fprintf(w, "  score %.4f", r.Score)
		if response.Mode == models.ModeHybrid {
			dimColor.Fprintf(w, " (keyword %.4f, semantic %.4f)", r.KeywordScore, r.SemanticScore)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "   %s\n", r.Path)
		if r.Preview != "" {
			dimColor.Fprintf(w, "   %s\n", utils.Truncate(r.Preview, previewChars))
		}
	}
}

// WriteAddPaper reports the outcome of add-paper.
func WriteAddPaper(w io.Writer, result *assistant.AddPaperResult, format OutputFormat) error {
	if format == OutputJSON {
		out := struct {
			*assistant.AddPaperResult
			MoveError string `json:"move_error,omitempty"`
		}{AddPaperResult: result}
		if result.MoveError != nil {
			out.MoveError = result.MoveError.Error()
		}
		return writeJSON(w, out)
	}

	p, cls := result.Paper, result.Classification
	if format == OutputCompact {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%s\n", p.ID, cls.Topic, cls.Score, p.Path)
		return nil
	}

	fmt.Fprint(w, "Indexed ")
	nameColor.Fprint(w, p.Filename)
	dimColor.Fprintf(w, " (%d chunks, id %s)\n", p.Chunks, p.ID)
	fmt.Fprint(w, "Topic: ")
	topicColor.Fprint(w, cls.Topic)
	fmt.Fprintf(w, " (score %.4f)\n", cls.Score)
	for _, s := range cls.Scores {
		dimColor.Fprintf(w, "  %-24s %.4f\n", s.Topic, s.Score)
	}
	switch {
	case result.MoveError != nil:
		warnColor.Fprintf(w, "Warning: could not move paper: %v\n", result.MoveError)
	case result.MovedTo != "":
		fmt.Fprintf(w, "Moved to %s\n", result.MovedTo)
	default:
		fmt.Fprintf(w, "Location: %s\n", p.Path)
	}
	return nil
}

// WritePaperList writes catalogued papers for list-papers.
func WritePaperList(w io.Writer, papers []*models.Paper, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if papers == nil {
			papers = []*models.Paper{}
		}
		return writeJSON(w, papers)
	case OutputCompact:
		for _, p := range papers {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Topic, p.Path)
		}
		return nil
	}
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers indexed yet.")
		return nil
	}
	for _, p := range papers {
		nameColor.Fprint(w, p.Filename)
		if p.Topic != "" {
			fmt.Fprint(w, "  ")
			topicColor.Fprintf(w, "[%s]", p.Topic)
		}
		fmt.Fprintln(w)
		dimColor.Fprintf(w, "   id %s  %d pages  indexed %s\n", p.ID, p.Pages, p.IndexedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "   %s\n", p.Path)
	}
	return nil
}

// WriteImageReport reports the outcome of index-images.
func WriteImageReport(w io.Writer, report *indexer.ImageReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	if format == OutputCompact {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", report.Found, report.Indexed, len(report.Skipped), report.Folder)
		return nil
	}
	if report.Found == 0 {
		fmt.Fprintf(w, "No images found in %s\n", report.Folder)
		return nil
	}
	fmt.Fprintf(w, "Indexed %d of %d images in %s\n", report.Indexed, report.Found, report.Folder)
	for _, s := range report.Skipped {
		warnColor.Fprintf(w, "  skipped %s: %s\n", s.Filename, s.Reason)
	}
	return nil
}

// WriteStatus writes index counts and storage settings.
func WriteStatus(w io.Writer, status *assistant.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "papers:             %d   # catalogued papers\n", status.Papers)
	fmt.Fprintf(w, "paper_chunks:       %d   # vectors in the papers collection\n", status.PaperChunks)
	fmt.Fprintf(w, "keyword_docs:       %d   # papers in the keyword index\n", status.KeywordDocs)
	fmt.Fprintf(w, "images:             %d   # catalogued images\n", status.Images)
	fmt.Fprintf(w, "image_vectors:      %d   # vectors in the images collection\n", status.ImageVectors)
	if u := status.DiskUsage; u != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # vectors %d, catalog %d, keyword %d\n",
			u.Total(), u.Vectors, u.Catalog, u.KeywordIndex)
	}
	if len(status.PapersByTopic) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# papers by topic")
		topics := make([]string, 0, len(status.PapersByTopic))
		for t := range status.PapersByTopic {
			topics = append(topics, t)
		}
		sort.Strings(topics)
		for _, t := range topics {
			name := t
			if name == "" {
				name = "(unclassified)"
			}
			fmt.Fprintf(w, "%-20s%d\n", name+":", status.PapersByTopic[t])
		}
	}
	if c := status.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "vector_backend:     %s\n", c.VectorBackend)
		if c.VectorPath != "" && c.VectorBackend != "memory" {
			fmt.Fprintf(w, "vector_path:        %s\n", c.VectorPath)
		}
		fmt.Fprintf(w, "catalog_path:       %s\n", c.CatalogPath)
		fmt.Fprintf(w, "keyword_index_path: %s\n", c.KeywordIndexPath)
		fmt.Fprintf(w, "text_encoder:       %s (%d dims)\n", c.TextProvider, c.TextDimensions)
		fmt.Fprintf(w, "clip_encoder:       %s (%d dims)\n", c.CLIPProvider, c.CLIPDimensions)
		fmt.Fprintf(w, "image_folder:       %s\n", c.ImageFolder)
		fmt.Fprintf(w, "default_topics:     %s\n", c.DefaultTopics)
	}
	return nil
}
