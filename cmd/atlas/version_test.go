package main

import (
	"runtime/debug"
	"testing"
)

func TestResolveBuildMetadata(t *testing.T) {
	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "deadbeef"},
		{Key: "vcs.time", Value: "2026-08-30T12:00:00Z"},
		{Key: "vcs.modified", Value: "false"},
	}

	tests := []struct {
		name       string
		commit     string
		date       string
		settings   []debug.BuildSetting
		wantCommit string
		wantDate   string
	}{
		{
			name:       "build flags win over vcs stamp",
			commit:     "abc123",
			date:       "2026-09-01",
			settings:   vcs,
			wantCommit: "abc123",
			wantDate:   "2026-09-01",
		},
		{
			name:       "vcs stamp fills missing values",
			settings:   vcs,
			wantCommit: "deadbeef",
			wantDate:   "2026-08-30T12:00:00Z",
		},
		{
			name:       "no information at all",
			wantCommit: "unknown",
			wantDate:   "unknown",
		},
		{
			name: "modified tree marked dirty",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "deadbeef"},
				{Key: "vcs.modified", Value: "true"},
			},
			wantCommit: "deadbeef-dirty",
			wantDate:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commit, date := resolveBuildMetadata(tt.commit, tt.date, tt.settings)
			if commit != tt.wantCommit {
				t.Errorf("commit = %q, want %q", commit, tt.wantCommit)
			}
			if date != tt.wantDate {
				t.Errorf("date = %q, want %q", date, tt.wantDate)
			}
		})
	}
}

func TestBuildMetadataNeverEmpty(t *testing.T) {
	commit, date := buildMetadata()
	if commit == "" {
		t.Error("commit should never be empty")
	}
	if date == "" {
		t.Error("date should never be empty")
	}
}

func TestVersionCommandRegistered(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Run == nil {
		t.Error("versionCmd.Run should not be nil")
	}
	if Version == "" {
		t.Error("Version should have a default")
	}
}
