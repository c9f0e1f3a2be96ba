package model

import "time"

// Patch statuses. Applied and failed are terminal.
const (
	PatchStatusPending = "pending"
	PatchStatusApplied = "applied"
	PatchStatusFailed  = "failed"
)

// Patch formats.
const (
	PatchFormatUnified = "unified"
	PatchFormatContext = "context"
)

// FileEdit is one requested change: the file's current content and the
// content it should have after the patch.
type FileEdit struct {
	Path     string `json:"path"`
	Original string `json:"original"`
	Modified string `json:"modified"`
}

// FilePatch is the stored per-file diff, in diff-match-patch text form.
type FilePatch struct {
	Path string `json:"path"`
	Diff string `json:"diff"`
}

// Patch is a generated textual diff for one or more files. Diff holds the
// combined human-readable text; Files holds the per-file machine form used
// to apply the change.
type Patch struct {
	ID          int64       `json:"id"`
	ChangeID    string      `json:"change_id"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Files       []FilePatch `json:"files"`
	Diff        string      `json:"diff"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// FilePaths lists the files the patch touches, in patch order
func (p *Patch) FilePaths() []string {
	paths := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Backup is a saved pre-change copy of a file. One must exist and validate
// before the corresponding patch may transition to applied.
type Backup struct {
	ID         int64     `json:"id"`
	ChangeID   string    `json:"change_id"`
	SourcePath string    `json:"source_path"`
	BackupPath string    `json:"backup_path"`
	CreatedAt  time.Time `json:"created_at"`
}
