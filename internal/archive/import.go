package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/pbaille/timeline/internal/domain"
)

var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Typographer),
)

// ImportJSON reads a day file ({"entries": [...]}) or a bare entry list.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader) ([]domain.Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	var entries []domain.Entry
	if len(raw) > 0 && raw[0] == '[' {
		err = json.Unmarshal(raw, &entries)
	} else {
		var resp domain.EntriesResponse
		err = json.Unmarshal(raw, &resp)
		entries = resp.Entries
	}
	if err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return s.AddEntries(ctx, entries)
}

// ImportMarkdown renders a markdown file to its content.html artifact and
// adds an entry for it: "diary" for *.diary.md files, "html" otherwise.
func (s *Store) ImportMarkdown(ctx context.Context, path string) (*domain.Entry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	var buf bytes.Buffer
	doc := mdRenderer.Parser().Parse(text.NewReader(src))
	if err := mdRenderer.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	entryType := "html"
	if strings.HasSuffix(strings.ToLower(filepath.Base(path)), ".diary.md") {
		entryType = "diary"
	}
	e := domain.Entry{EntryType: entryType, Title: headingText(doc, src)}
	return s.importFile(ctx, path, src, e, Artifact{Name: "content.html", ContentType: "text/html; charset=utf-8", Body: buf.Bytes()})
}

// ImportText stores a plain text file as its content.txt artifact.
func (s *Store) ImportText(ctx context.Context, path string) (*domain.Entry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	e := domain.Entry{EntryType: "text"}
	return s.importFile(ctx, path, src, e, Artifact{Name: "content.txt", ContentType: "text/plain; charset=utf-8", Body: src})
}

func (s *Store) importFile(ctx context.Context, path string, src []byte, e domain.Entry, a Artifact) (*domain.Entry, error) {
	sum := sha256.Sum256(src)
	checksum := hex.EncodeToString(sum[:])

	start, end, ok := DatesFromFilename(path, s.loc)
	if !ok {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		start = info.ModTime().In(s.loc)
	}

	// Re-importing a file replaces its entry.
	e.ID = checksum
	e.Checksum = checksum
	e.FilePath = path
	e.DateStart = start.Format(time.RFC3339)
	if !end.IsZero() {
		e.DateEnd = end.Format(time.RFC3339)
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}

	a.Checksum = checksum
	if err := s.PutArtifact(ctx, a); err != nil {
		return nil, err
	}
	added, err := s.AddEntries(ctx, []domain.Entry{e})
	if err != nil {
		return nil, err
	}
	return &added[0], nil
}

// ImportPath imports a file, or every supported file under a directory.
// It returns the number of entries added.
func (s *Store) ImportPath(ctx context.Context, root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md":
			if _, err := s.ImportMarkdown(ctx, path); err != nil {
				return err
			}
			count++
		case ".txt":
			if _, err := s.ImportText(ctx, path); err != nil {
				return err
			}
			count++
		case ".json":
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			added, err := s.ImportJSON(ctx, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			count += len(added)
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("import %s: %w", root, err)
	}
	return count, nil
}

// headingText returns the text of the first heading, if any.
func headingText(doc ast.Node, src []byte) string {
	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		ast.Walk(h, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
			if t, ok := c.(*ast.Text); ok && entering {
				sb.Write(t.Segment.Value(src))
				if t.SoftLineBreak() {
					sb.WriteByte(' ')
				}
			}
			return ast.WalkContinue, nil
		})
		title = strings.TrimSpace(sb.String())
		return ast.WalkStop, nil
	})
	return title
}

var (
	datePattern     = `(19\d\d|20\d\d)-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])(T([01]\d|2[0-3])([0-5]\d))?`
	fileDatePattern = regexp.MustCompile(`(?:(` + datePattern + `) to )?(` + datePattern + `)$`)
)

// DatesFromFilename reads "2021-05-02", "2021-05-02T1530" or
// "2021-05-01 to 2021-05-03" from the part of the file name before the
// first dot. A range ends one second before its end bound; a day bound
// covers the whole day.
func DatesFromFilename(path string, loc *time.Location) (start, end time.Time, ok bool) {
	name, _, _ := strings.Cut(filepath.Base(path), ".")
	m := fileDatePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	a, b := m[1], m[8]
	bt, err := parseFileDate(b, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if a == "" {
		return bt, time.Time{}, true
	}
	at, err := parseFileDate(a, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if strings.Contains(b, "T") {
		return at, bt.Add(-time.Second), true
	}
	return at, bt.AddDate(0, 0, 1).Add(-time.Second), true
}

func parseFileDate(s string, loc *time.Location) (time.Time, error) {
	if strings.Contains(s, "T") {
		return time.ParseInLocation("2006-01-02T1504", s, loc)
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}
