// Package publish exports a session as a markdown project sheet, with cover
// art written next to it. Nothing here is read back.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"daiw-cli/internal/model"
	"daiw-cli/internal/store"
)

type WriteOptions struct {
	IncludeChat    bool
	IncludeContext bool
	Overwrite      bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteSession writes <toDir>/<project-slug>.md and, with IncludeChat, every
// image attachment under <toDir>/images.
func WriteSession(s *store.Session, toDir string, opt WriteOptions) (WriteResult, error) {
	if s == nil {
		return WriteResult{}, errors.New("missing session")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	written := []string{}
	links := map[string]string{}
	if opt.IncludeChat {
		for _, msg := range s.Chat {
			for _, att := range msg.Attachments {
				if att.Kind != model.AttachmentImage || len(att.Bytes) == 0 {
					continue
				}
				rel := filepath.Join("images", msg.ID+att.FileExt())
				p := filepath.Join(toDir, rel)
				if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
					return WriteResult{}, err
				}
				if err := writeFile(p, att.Bytes, opt.Overwrite); err != nil {
					return WriteResult{}, err
				}
				links[msg.ID] = filepath.ToSlash(rel)
				written = append(written, p)
				// One image per message.
				break
			}
		}
	}

	md := RenderSessionMarkdown(s.Snapshot(), s.Chat, RenderOptions{
		IncludeChat:    opt.IncludeChat,
		IncludeContext: opt.IncludeContext,
		ImageLinks:     links,
	})
	mdPath := filepath.Join(toDir, Slug(s.Meta.Name)+".md")
	if err := writeFile(mdPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: append([]string{mdPath}, written...)}, nil
}

// Slug turns a project name into a file name: lower-case words joined by dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "project"
	}
	return out
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
