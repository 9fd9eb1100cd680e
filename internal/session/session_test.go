package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/pkg/errors"
)

func treatedFile(name string, keys ...string) *models.TreatedFile {
	table := models.NewTable(models.CanonicalColumns)
	for _, key := range keys {
		table.AppendRow(models.Text(key), models.Text("02/01/2024"))
	}
	return models.NewTreatedFile(name, name[:len(name)-5]+"_tratada.xlsx", table)
}

func TestSession_ResetReplacesState(t *testing.T) {
	s := New()
	firstID := s.ID()

	s.Add(treatedFile("a.xlsx", "1"))
	s.Add(treatedFile("b.xlsx", "2"))
	if s.Len() != 2 {
		t.Fatalf("Expected 2 files, got %d", s.Len())
	}

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Expected empty session after reset, got %d", s.Len())
	}
	if s.ID() == firstID {
		t.Error("Expected a new session ID after reset")
	}
}

func TestSession_FilesIsSnapshot(t *testing.T) {
	s := New()
	s.Add(treatedFile("a.xlsx", "1"))

	files := s.Files()
	files[0] = nil
	s.Add(treatedFile("b.xlsx", "2"))

	if len(files) != 1 {
		t.Errorf("Snapshot grew with the session: %d", len(files))
	}
	if s.Files()[0] == nil {
		t.Error("Mutating the snapshot changed the session")
	}
}

func TestSession_ConcurrentReaders(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Add(treatedFile("a.xlsx", "1"))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := len(s.Files()); got != 10 {
				t.Errorf("Expected 10 files, got %d", got)
			}
		}()
	}
	wg.Wait()
}

func TestStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workspace")
	store := NewStore(dir)

	s := New()
	first := treatedFile("Extrato_422-6.xlsx", "0001", "0002")
	first.Stats = &models.ReconstructionStats{InputRows: 5, MainRows: 2, OutputRows: 2}
	s.Add(first)
	s.Add(treatedFile("Extrato_422-6.xlsx", "0003"))

	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err != nil {
		t.Fatalf("Expected manifest to exist: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ID() != s.ID() {
		t.Errorf("Expected session ID %s, got %s", s.ID(), loaded.ID())
	}
	files := loaded.Files()
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}
	if files[0].SuggestedName != "Extrato_422-6_tratada.xlsx" {
		t.Errorf("Unexpected suggested name %q", files[0].SuggestedName)
	}
	if files[0].Rows() != 2 || files[1].Rows() != 1 {
		t.Errorf("Expected 2 and 1 rows, got %d and %d", files[0].Rows(), files[1].Rows())
	}
	if files[0].Table.Cell(1, 0).Value != "0002" {
		t.Errorf("Expected key '0002', got %q", files[0].Table.Cell(1, 0).Value)
	}
	if files[1].Table.Cell(0, 0).Value != "0003" {
		t.Error("Files sharing a suggested name must not overwrite each other")
	}
	if files[0].Stats == nil || files[0].Stats.InputRows != 5 {
		t.Errorf("Expected stats to survive, got %+v", files[0].Stats)
	}
}

func TestStore_KeepsEmptyCellsApartFromMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	file := treatedFile("Extrato_558-4.xlsx", "0001", "0002")
	file.Table.Set(0, 4, models.Text(""))
	file.Table.Set(1, 7, models.Text("Fornecedor"))

	s := New()
	s.Add(file)
	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	table := loaded.Files()[0].Table

	if cell := table.Cell(0, 4); cell.IsMissing() || cell.Value != "" {
		t.Errorf("Expected a present empty cell, got %+v", cell)
	}
	if !table.Cell(0, 5).IsMissing() || !table.Cell(1, 4).IsMissing() {
		t.Error("Expected untouched cells to stay missing")
	}
	if table.Cell(1, 7).Value != "Fornecedor" {
		t.Errorf("Expected 'Fornecedor', got %q", table.Cell(1, 7).Value)
	}
}

func TestStore_SaveReplacesPreviousRun(t *testing.T) {
	store := NewStore(t.TempDir())

	s := New()
	s.Add(treatedFile("a.xlsx", "1"))
	s.Add(treatedFile("b.xlsx", "2"))
	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s.Reset()
	s.Add(treatedFile("c.xlsx", "3"))
	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 1 || loaded.Files()[0].OriginalName != "c.xlsx" {
		t.Errorf("Expected only the latest run, got %d files", loaded.Len())
	}
}

func TestStore_LoadMissingWorkspace(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "nothing")).Load()
	stmtErr, ok := errors.AsStatementError(err)
	if !ok || stmtErr.Code != errors.CodeFileNotFound {
		t.Errorf("Expected file_not_found, got %v", err)
	}
}

func TestStore_LoadCorruptManifest(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ManifestFile), []byte("{not json"), 0644)

	_, err := NewStore(dir).Load()
	stmtErr, ok := errors.AsStatementError(err)
	if !ok || stmtErr.Category != errors.CategoryRead {
		t.Errorf("Expected read error, got %v", err)
	}
}
