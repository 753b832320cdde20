package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/converseworks/convkit/internal/connector"
	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/participant"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// DefaultExportDir is the conventional export location. The directory is
// injectable so deployments are not tied to the working directory.
const DefaultExportDir = "dialogue_export"

// Filter restricts imports to the given participant ids. Empty slices match
// everything.
type Filter struct {
	AgentIDs []string
	UserIDs  []string
}

func (f Filter) matches(d *dialogue.Dialogue) bool {
	return contains(f.AgentIDs, d.AgentID()) && contains(f.UserIDs, d.UserID())
}

func contains(ids []string, id string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// JSONStore persists dialogues as one JSON array per participant pair under
// an export directory, created on demand.
type JSONStore struct {
	dir string
}

// NewJSONStore creates a store rooted at dir; an empty dir selects
// DefaultExportDir.
func NewJSONStore(dir string) *JSONStore {
	if dir == "" {
		dir = DefaultExportDir
	}
	return &JSONStore{dir: dir}
}

// Dir returns the export directory.
func (s *JSONStore) Dir() string {
	return s.dir
}

// FilePath returns the export file for a participant pair:
// "{dir}/{agentID}_{userID}.json".
func (s *JSONStore) FilePath(agentID, userID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", agentID, userID))
}

// Export appends the dialogue to the pair's export file. An existing file
// that cannot be parsed aborts the export with a fatal error so prior
// dialogues are never clobbered.
func (s *JSONStore) Export(d *dialogue.Dialogue, agent, user participant.Info) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errx.Fatal(err, "create export directory")
	}

	path := s.FilePath(d.AgentID(), d.UserID())
	var records []map[string]any
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &records); err != nil {
			logx.Error().Err(err).Str("path", path).Msg("existing export file is corrupt")
			return errx.Fatal(err, "existing export file is corrupt")
		}
	case os.IsNotExist(err):
		// first dialogue for this pair
	default:
		return errx.Fatal(err, "read export file")
	}

	records = append(records, dialogueToRecord(d, agent, user))
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errx.Fatal(err, "encode dialogues")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errx.Fatal(err, "write export file")
	}
	logx.Debug().Str("path", path).Int("dialogues", len(records)).Msg("dialogue exported")
	return nil
}

// Load reads every dialogue exported for the participant pair.
func (s *JSONStore) Load(agentID, userID string) ([]*dialogue.Dialogue, error) {
	return LoadFile(s.FilePath(agentID, userID), Filter{})
}

// LoadAll reads every export file in the directory, restricted by the filter.
func (s *JSONStore) LoadAll(filter Filter) ([]*dialogue.Dialogue, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errx.NotFound("export directory %s does not exist", s.dir)
		}
		return nil, errx.Fatal(err, "read export directory")
	}
	var all []*dialogue.Dialogue
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		ds, err := LoadFile(filepath.Join(s.dir, entry.Name()), filter)
		if err != nil {
			return nil, err
		}
		all = append(all, ds...)
	}
	return all, nil
}

// LoadFile reads one export file and reconstructs its dialogues. A missing
// file is a not-found error.
func LoadFile(path string, filter Filter) ([]*dialogue.Dialogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errx.NotFound("dialogue file %s does not exist", path)
		}
		return nil, errx.Fatal(err, "read dialogue file")
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errx.Fatal(err, "parse dialogue file")
	}

	dialogues := make([]*dialogue.Dialogue, 0, len(records))
	for i, rec := range records {
		d, err := recordToDialogue(rec)
		if err != nil {
			return nil, errx.Fatal(fmt.Errorf("dialogue %d: %w", i, err), "malformed dialogue record")
		}
		if filter.matches(d) {
			dialogues = append(dialogues, d)
		}
	}
	return dialogues, nil
}

var _ connector.Store = (*JSONStore)(nil)
