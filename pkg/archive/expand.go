// Package archive unpacks bundled submissions and fans each member back
// through detection and extraction.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/costlens/costlens/pkg/detect"
	"github.com/costlens/costlens/pkg/extract"
	"github.com/costlens/costlens/pkg/model"
)

// ErrTooManyMembers rejects archives over the configured member cap.
// The whole archive is refused; there is no partial processing.
var ErrTooManyMembers = errors.New("archive exceeds member limit")

// Member is one textual archive entry.
type Member struct {
	Name    string
	Content []byte
}

// Expand unpacks a ZIP buffer into its textual members, in archive
// order. Directories and non-text members are skipped; skipping is not
// an error. maxMembers counts every entry, including skipped ones, so a
// zip bomb padded with binaries is still refused.
func Expand(zipBytes []byte, maxMembers int, logger *slog.Logger) ([]Member, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reader, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if maxMembers > 0 && len(reader.File) > maxMembers {
		return nil, fmt.Errorf("%w: %d members, limit %d", ErrTooManyMembers, len(reader.File), maxMembers)
	}

	var members []Member
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || strings.HasPrefix(file.Name, "__MACOSX/") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			logger.Warn("skipping unreadable archive member", "member", file.Name, "error", err)
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			logger.Warn("skipping unreadable archive member", "member", file.Name, "error", err)
			continue
		}
		if !isText(content) {
			logger.Debug("skipping binary archive member", "member", file.Name)
			continue
		}
		members = append(members, Member{Name: file.Name, Content: content})
	}
	return members, nil
}

// ExtractAll runs detection and extraction per member and merges the
// partial models in member-iteration order. Member order, not completion
// order, decides the merged result, so the output is deterministic.
// The count reports how many members matched a dialect at all; zero
// means the archive held no infrastructure, as opposed to members that
// parsed but defined no resources.
func ExtractAll(members []Member, logger *slog.Logger) (*model.Model, int) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	merged := &model.Model{}
	extracted := 0
	for _, member := range members {
		kind := detect.Detect(member.Name, member.Content)
		extractor, ok := extract.ForKind(kind)
		if !ok {
			logger.Debug("no extractor for archive member", "member", member.Name, "kind", string(kind))
			continue
		}
		partial := extractor.Extract(string(member.Content))
		merged.Merge(partial)
		extracted++
	}
	return merged, extracted
}

// isText reports whether content decodes as UTF-8 with no NUL bytes.
func isText(content []byte) bool {
	if bytes.IndexByte(content, 0) >= 0 {
		return false
	}
	return utf8.Valid(content)
}
