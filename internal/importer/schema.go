package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ArchiveVersion is the only archive layout understood by this build.
const ArchiveVersion = 1

// Archive is the JSON backup of one owner's homilies, contexts and settings.
type Archive struct {
	Version    int             `json:"version"`
	ExportedAt string          `json:"exported_at,omitempty"`
	Settings   *SettingsImport `json:"settings,omitempty"`
	Contexts   []ContextImport `json:"contexts,omitempty"`
	Homilies   []HomilyImport  `json:"homilies"`
}

// SettingsImport restores the owner's definitions and default context.
type SettingsImport struct {
	Definitions       *string `json:"definitions,omitempty"`
	DefaultContextRef *string `json:"default_context_ref,omitempty"`
}

// ContextImport is a saved preaching context. Ref is local to the archive.
type ContextImport struct {
	Ref     string `json:"ref"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// HomilyImport is one homily draft. When Context is empty and ContextRef
// names an archived context, that context's text is copied in.
type HomilyImport struct {
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Context         string  `json:"context,omitempty"`
	ContextRef      *string `json:"context_ref,omitempty"`
	Readings        string  `json:"readings,omitempty"`
	Definitions     string  `json:"definitions,omitempty"`
	FirstQuestions  string  `json:"first_questions,omitempty"`
	SecondQuestions string  `json:"second_questions,omitempty"`
	FinalDraft      string  `json:"final_draft,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// LoadArchive reads and parses an archive file.
func LoadArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseArchive(f)
}

// ParseArchive decodes an archive, rejecting unknown keys.
func ParseArchive(r io.Reader) (*Archive, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var a Archive
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("parsing archive: %w", err)
	}
	return &a, nil
}

// Write encodes the archive as indented JSON.
func (a *Archive) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
