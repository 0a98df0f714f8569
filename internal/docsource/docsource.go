package docsource

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/episcan/pkg/episcan"
	"github.com/cognicore/episcan/pkg/episcan/candidate"
)

// DefaultTrust is used when a document arrives without a trust value
var DefaultTrust = map[candidate.SourceType]float64{
	candidate.TitleDescription: 0.9,
	candidate.SearchSnippet:    0.7,
	candidate.Comment:          0.5,
}

// wireEpisode mirrors episcan.Episode with trust kept optional, so an
// explicit 0 can be told apart from a missing value
type wireEpisode struct {
	ID        string         `json:"episodeId"`
	Documents []wireDocument `json:"documents"`
}

type wireDocument struct {
	ID          string               `json:"id"`
	Text        string               `json:"text"`
	SourceType  candidate.SourceType `json:"sourceType"`
	SourceTrust *float64             `json:"sourceTrust"`
	OriginURL   string               `json:"originUrl,omitempty"`
}

// LoadFromJSONL loads episodes from a JSONL file, one episode per line
func LoadFromJSONL(path string, logger *slog.Logger) ([]episcan.Episode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	episodes, err := Read(f, logger)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(episodes) == 0 {
		return nil, fmt.Errorf("no valid episodes found in %s", path)
	}
	return episodes, nil
}

// Read decodes JSONL episodes from r. Malformed lines and documents are
// skipped with a warning.
func Read(r io.Reader, logger *slog.Logger) ([]episcan.Episode, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		episodes []episcan.Episode
		line     int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var ep wireEpisode
		if err := json.Unmarshal([]byte(text), &ep); err != nil {
			logger.Warn("skipping malformed episode", "line", line, "error", err)
			continue
		}
		if strings.TrimSpace(ep.ID) == "" {
			logger.Warn("skipping episode without id", "line", line)
			continue
		}
		episodes = append(episodes, episcan.Episode{ID: ep.ID, Documents: cleanDocuments(ep, logger)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return episodes, nil
}

func cleanDocuments(ep wireEpisode, logger *slog.Logger) []candidate.SourceDocument {
	docs := make([]candidate.SourceDocument, 0, len(ep.Documents))
	for i, d := range ep.Documents {
		if !d.SourceType.Valid() {
			logger.Warn("skipping document with unknown source type",
				"episode", ep.ID, "document", d.ID, "source_type", d.SourceType)
			continue
		}
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("%s#%d", ep.ID, i)
		}
		docs = append(docs, candidate.SourceDocument{
			ID:          id,
			Text:        StripHTML(d.Text),
			SourceType:  d.SourceType,
			SourceTrust: normalizeTrust(d.SourceTrust, d.SourceType),
			OriginURL:   d.OriginURL,
		})
	}
	return docs
}

// normalizeTrust clamps t into [0,1]; a missing value takes the per-type default
func normalizeTrust(t *float64, st candidate.SourceType) float64 {
	switch {
	case t == nil:
		return DefaultTrust[st]
	case *t < 0:
		return 0
	case *t > 1:
		return 1
	}
	return *t
}

// StripHTML returns the text content of s when it contains markup
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p" || n.Data == "li") {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
