package archive

import (
	"io"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
	"github.com/Sumatoshi-tech/pulith/pkg/workspace"
)

// Extraction is a pending extraction staged under a temporary workspace; the
// destination is populated only once Commit succeeds (spec.md §4.G).
type Extraction struct {
	ws     *workspace.Workspace
	report Report
}

// Report returns the extraction's accumulated report.
func (e *Extraction) Report() Report { return e.report }

// Commit atomically moves the staged extraction to destination.
func (e *Extraction) Commit(destination string) (Report, error) {
	if err := e.ws.Commit(destination); err != nil {
		return Report{}, err
	}

	return e.report, nil
}

// Abort discards the staged extraction.
func (e *Extraction) Abort() error {
	return e.ws.Abort()
}

// ExtractToWorkspace detects r's format from its leading bytes and
// extracts it into a fresh workspace
// staging directory under workspaceRoot, returning a handle whose Commit
// atomically moves the result into place.
func ExtractToWorkspace(r io.Reader, workspaceRoot string, opts Options) (*Extraction, error) {
	format, body, ok := DetectFromReader(r)
	if !ok {
		return nil, &pulitherr.Corrupted{Msg: "unrecognized archive format"}
	}

	ws, err := workspace.Open(workspaceRoot)
	if err != nil {
		return nil, err
	}

	report, err := ExtractToDir(body, format, ws.Staging(), opts)
	if err != nil {
		_ = ws.Abort()
		return nil, err
	}

	return &Extraction{ws: ws, report: report}, nil
}
