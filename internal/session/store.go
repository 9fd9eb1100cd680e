package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/internal/parsers"
	"bank-statement-consolidator/internal/serializer"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// ManifestFile is the name of the session manifest inside a workspace
const ManifestFile = "session.json"

// Manifest describes a persisted session
type Manifest struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	SavedAt   time.Time       `json:"saved_at"`
	Files     []ManifestEntry `json:"files"`
}

// ManifestEntry describes one treated file of a persisted session
type ManifestEntry struct {
	OriginalName  string                      `json:"original_name"`
	SuggestedName string                      `json:"suggested_name"`
	StoredAs      string                      `json:"stored_as"`
	Rows          int                         `json:"rows"`
	Stats         *models.ReconstructionStats `json:"stats,omitempty"`

	// EmptyCells lists the [row, column] positions of present but empty
	// cells, which the workbook alone stores the same as missing ones
	EmptyCells [][2]int `json:"empty_cells,omitempty"`
}

// Store persists sessions to a workspace directory so the treatment and
// consolidation phases can run in separate processes
type Store struct {
	dir    string
	logger logger.Logger
}

// NewStore creates a Store rooted at dir
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: logger.WithComponent("session_store").WithField("workspace", dir),
	}
}

// Dir returns the workspace directory
func (st *Store) Dir() string {
	return st.dir
}

// Save writes every treated file of the session as xlsx and replaces the
// manifest. Files from an earlier run that the new manifest does not list
// are ignored on Load.
func (st *Store) Save(s *Session) error {
	if err := os.MkdirAll(st.dir, 0755); err != nil {
		return errors.FileError(errors.CodeDirectoryError, st.dir, err)
	}

	files := s.Files()
	manifest := Manifest{
		ID:        s.ID(),
		StartedAt: s.StartedAt(),
		SavedAt:   time.Now(),
		Files:     make([]ManifestEntry, 0, len(files)),
	}

	for i, file := range files {
		storedAs := fmt.Sprintf("%03d_%s", i+1, filepath.Base(file.SuggestedName))
		if err := serializer.WriteFile(filepath.Join(st.dir, storedAs), file.Table); err != nil {
			return err
		}
		manifest.Files = append(manifest.Files, ManifestEntry{
			OriginalName:  file.OriginalName,
			SuggestedName: file.SuggestedName,
			StoredAs:      storedAs,
			Rows:          file.Rows(),
			Stats:         file.Stats,
			EmptyCells:    emptyCells(file.Table),
		})
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "session manifest encoding", err)
	}

	path := filepath.Join(st.dir, ManifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}

	st.logger.WithFields(logger.Fields{
		"session": manifest.ID,
		"files":   len(manifest.Files),
	}).Info("Saved session")

	return nil
}

// Load reads the session persisted in the workspace
func (st *Store) Load() (*Session, error) {
	path := filepath.Join(st.dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err).
				WithSuggestion("run the treat command with this workspace first")
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.ReadError(path, err)
	}

	reader, err := parsers.NewSheetReader(parsers.TreatedReaderConfig())
	if err != nil {
		return nil, err
	}

	files := make([]*models.TreatedFile, 0, len(manifest.Files))
	for _, entry := range manifest.Files {
		stored := filepath.Join(st.dir, entry.StoredAs)
		raw, err := os.ReadFile(stored)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileNotFound, stored, err)
		}

		table, _, err := reader.Read(entry.SuggestedName, raw)
		if err != nil {
			return nil, err
		}

		for _, pos := range entry.EmptyCells {
			if pos[0] < table.Len() && pos[1] < table.Width() {
				table.Set(pos[0], pos[1], models.Text(""))
			}
		}

		file := models.NewTreatedFile(entry.OriginalName, entry.SuggestedName, table)
		file.Stats = entry.Stats
		if err := file.Validate(); err != nil {
			return nil, errors.ReadError(stored, err)
		}
		files = append(files, file)
	}

	st.logger.WithFields(logger.Fields{
		"session": manifest.ID,
		"files":   len(files),
	}).Debug("Loaded session")

	return restore(manifest.ID, manifest.StartedAt, files), nil
}

func emptyCells(table *models.Table) [][2]int {
	var cells [][2]int
	for r, row := range table.Rows {
		for c, cell := range row {
			if !cell.IsMissing() && cell.Value == "" {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}
