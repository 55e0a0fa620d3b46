package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported file formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// AmbiguousIDError is returned when multiple transcripts match a prefix
type AmbiguousIDError struct {
	Prefix  string
	Matches []Transcript
}

func (e *AmbiguousIDError) Error() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Ambiguous transcript ID %q. Multiple matches found:", e.Prefix))
	for _, match := range e.Matches {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s, %d messages)",
			match.GetShortID(),
			match.AppName,
			match.CreatedAt.Format("2006-01-02"),
			match.MessageCount()))
	}
	lines = append(lines, "")
	lines = append(lines, "Please use a longer prefix or run 'agentchat transcripts list'.")
	return strings.Join(lines, "\n")
}

// Store reads and writes transcripts in a directory
type Store struct {
	Dir    string
	Format string // FormatJSON or FormatYAML, used when saving
}

// NewStore creates a store rooted at dir
func NewStore(dir, format string) (*Store, error) {
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s (expected json or yaml)", format)
	}
	return &Store{Dir: dir, Format: format}, nil
}

// Save writes a transcript to disk and returns the file path
func (s *Store) Save(t *Transcript) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create transcript directory: %w", err)
	}

	var data []byte
	var err error
	switch s.Format {
	case FormatYAML:
		data, err = yaml.Marshal(t)
	default:
		data, err = json.MarshalIndent(t, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to serialize transcript: %w", err)
	}

	path := filepath.Join(s.Dir, t.ID+"."+s.Format)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript file: %w", err)
	}
	return path, nil
}

// Load loads a transcript by full ID in either format
func (s *Store) Load(id string) (*Transcript, error) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		path := filepath.Join(s.Dir, id+"."+format)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read transcript file: %w", err)
		}
		return decode(data, format)
	}
	return nil, fmt.Errorf("transcript not found: %s\n\nRun 'agentchat transcripts list' to see available transcripts.", id)
}

func decode(data []byte, format string) (*Transcript, error) {
	var t Transcript
	var err error
	if format == FormatYAML {
		err = yaml.Unmarshal(data, &t)
	} else {
		err = json.Unmarshal(data, &t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript file: %w\n\nThe transcript file may be corrupted.", err)
	}
	return &t, nil
}

// Rename sets the name of a transcript, keeping the file's format
func (s *Store) Rename(id, name string) (*Transcript, error) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		path := filepath.Join(s.Dir, id+"."+format)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		t, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		t.Name = name
		store := &Store{Dir: s.Dir, Format: format}
		if _, err := store.Save(t); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("transcript not found: %s", id)
}

// Delete removes a transcript by full ID
func (s *Store) Delete(id string) error {
	for _, format := range []string{FormatJSON, FormatYAML} {
		err := os.Remove(filepath.Join(s.Dir, id+"."+format))
		if err == nil {
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete transcript file: %w", err)
		}
	}
	return fmt.Errorf("transcript not found: %s", id)
}

// List returns all transcripts sorted by CreatedAt (newest first)
func (s *Store) List() ([]Transcript, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Transcript{}, nil
		}
		return nil, fmt.Errorf("failed to read transcript directory: %w", err)
	}

	var transcripts []Transcript
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if ext != FormatJSON && ext != FormatYAML {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue
		}
		t, err := decode(data, ext)
		if err != nil {
			// Skip corrupted transcript files
			continue
		}
		transcripts = append(transcripts, *t)
	}

	sort.Slice(transcripts, func(i, j int) bool {
		return transcripts[i].CreatedAt.After(transcripts[j].CreatedAt)
	})
	return transcripts, nil
}

// FindByPrefix finds a transcript by short ID prefix (minimum 4 characters).
// "latest" returns the most recent transcript.
func (s *Store) FindByPrefix(prefix string) (*Transcript, error) {
	transcripts, err := s.List()
	if err != nil {
		return nil, err
	}

	if prefix == "latest" {
		if len(transcripts) == 0 {
			return nil, fmt.Errorf("no transcripts found\n\nExport one with: agentchat chat --transcript \"your message\"")
		}
		return &transcripts[0], nil
	}

	if len(prefix) < 4 {
		return nil, fmt.Errorf("transcript ID prefix must be at least 4 characters (got %d)", len(prefix))
	}

	var matches []Transcript
	for _, t := range transcripts {
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("transcript not found: %s\n\nRun 'agentchat transcripts list' to see available transcripts.", prefix)
	}
	if len(matches) > 1 {
		return nil, &AmbiguousIDError{Prefix: prefix, Matches: matches}
	}
	return &matches[0], nil
}
