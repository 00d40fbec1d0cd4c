// Package manager is the catalog service behind the HTTP API. It owns the
// collaborators of one base directory and maps their errors onto a small
// taxonomy with HTTP status codes. It is structured into small files by concern:
//
//   - manager.go: Manager type, constructor, readiness and base path handling.
//   - config.go: ManagerConfig and package defaults.
//   - errors.go: error types and helpers (IsPathEscape, IsInvalidBasePath, ...).
//   - catalog.go: folder listing, single-folder and tree scans, sidecars.
//   - previews.go: model preview listing, upload and swap.
//   - clicks.go: click recording.
//   - combinations.go: combination CRUD and previews.
//   - watch.go: fsnotify-backed change tracking for the base path.
//   - status_report.go: Status reporting.
//   - events.go: mutation events for optional subscribers.
//
// Every scan and mutation first checks the base path; an empty or missing
// directory fails with InvalidBasePath. Scans are best-effort: unreadable
// model files, sidecars and sub-directories are logged and skipped.
package manager
