package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		RNGSeed:   42,
		Length:    10,
		Boundary:  "periodic",
		Tick:      1000,
		Time:      16.5,
		PreyAlive: 1,
		PredAlive: 1,
		Agents: []AgentState{
			{Index: 0, Kind: "prey", Alive: true, X: 1.5, Y: 2.5, VelX: 0.5, VelY: -0.3, Heading: 1.2},
			{Index: 1, Kind: "prey", Alive: false, X: 3, Y: 4, DeathTick: 900},
			{Index: 2, Kind: "predator", Alive: true, X: 5, Y: 6, VelX: 1},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkKillBurst,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_1000_kill_burst.json") {
		t.Errorf("unexpected snapshot path %q", path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != snapshot.Version || loaded.RNGSeed != snapshot.RNGSeed {
		t.Errorf("header mismatch: got %d/%d", loaded.Version, loaded.RNGSeed)
	}
	if loaded.Tick != snapshot.Tick || loaded.Boundary != snapshot.Boundary {
		t.Errorf("tick/boundary mismatch: got %d/%s", loaded.Tick, loaded.Boundary)
	}
	if len(loaded.Agents) != len(snapshot.Agents) {
		t.Fatalf("agent count mismatch: got %d, want %d", len(loaded.Agents), len(snapshot.Agents))
	}
	for i := range snapshot.Agents {
		if loaded.Agents[i] != snapshot.Agents[i] {
			t.Errorf("agent %d mismatch: got %+v, want %+v", i, loaded.Agents[i], snapshot.Agents[i])
		}
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkKillBurst {
		t.Errorf("bookmark mismatch: %+v", loaded.Bookmark)
	}
}

func TestSnapshotWithoutBookmark(t *testing.T) {
	tmpDir := t.TempDir()
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 7}, tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "snapshot_7.json" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["bookmark"]; ok {
		t.Error("bookmark should be omitted when nil")
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error")
	}
}
