// Package export turns a selection into an export request, hands it to the
// rendering collaborator and saves the returned document.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/selection"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

// ErrNoSelection is returned when no PM event is selected. No request is sent.
var ErrNoSelection = errors.New("no pm events selected")

// GenericFailureMessage is surfaced when the collaborator failed without a
// message of its own.
const GenericFailureMessage = "Failed to generate the report. Please try again."

// Document is the rendered report returned by the collaborator.
type Document struct {
	Body      []byte
	Filename  string
	Customer  string
	Branch    string
	Timestamp string
}

// SuggestedName returns Filename, or a name built from the customer, branch
// and timestamp when the collaborator sent none.
func (d Document) SuggestedName() string {
	if name := strings.TrimSpace(d.Filename); name != "" {
		return name
	}
	parts := []string{"PM_Report"}
	for _, p := range []string{d.Customer, d.Branch, d.Timestamp} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_") + ".pdf"
}

type Collaborator interface {
	Export(ctx context.Context, req maintenance.ExportRequest) (*Document, error)
}

type Saver interface {
	Save(ctx context.Context, doc *Document) (string, error)
}

// MessageCarrier is implemented by collaborator errors that hold a message
// meant for the user.
type MessageCarrier interface {
	UserMessage() string
}

// Error reports a failed export. Message is shown to the user as is.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

func newError(err error) *Error {
	msg := ""
	var mc MessageCarrier
	if errors.As(err, &mc) {
		msg = strings.TrimSpace(mc.UserMessage())
	}
	if msg == "" {
		msg = GenericFailureMessage
	}
	return &Error{Message: msg, Err: err}
}

// BuildRequest flattens the selected events, per asset in insertion order and
// then per event in toggle order.
func BuildRequest(state *selection.State) (maintenance.ExportRequest, error) {
	if state == nil || state.TotalSelectedEvents() == 0 {
		return maintenance.ExportRequest{}, ErrNoSelection
	}
	ids := make([]int64, 0, state.TotalSelectedEvents())
	for _, ae := range state.Events() {
		ids = append(ids, ae.PMIDs...)
	}
	return maintenance.ExportRequest{PMIDs: ids}, nil
}

type Requester struct {
	collaborator Collaborator
	saver        Saver
	log          *logger.Logger
}

func NewRequester(c Collaborator, s Saver, baseLog *logger.Logger) *Requester {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Requester{collaborator: c, saver: s, log: baseLog.With("component", "ExportRequester")}
}

// Export sends the selection to the collaborator and saves the result. The
// selection is cleared only once the document is saved; any failure leaves it
// untouched so the caller can retry.
func (r *Requester) Export(ctx context.Context, state *selection.State) (string, error) {
	req, err := BuildRequest(state)
	if err != nil {
		return "", err
	}
	r.log.Info("Requesting export", "pm_ids", len(req.PMIDs))

	doc, err := r.collaborator.Export(ctx, req)
	if err != nil {
		r.log.Warn("Export failed", "error", err)
		return "", newError(err)
	}
	if doc == nil {
		return "", newError(errors.New("empty export response"))
	}

	path, err := r.saver.Save(ctx, doc)
	if err != nil {
		r.log.Error("Saving export failed", "error", err)
		return "", fmt.Errorf("save export: %w", err)
	}
	state.Clear()
	r.log.Info("Export saved", "path", path, "bytes", len(doc.Body))
	return path, nil
}

// FileSaver writes documents into Dir.
type FileSaver struct {
	Dir string
}

func (f FileSaver) Save(ctx context.Context, doc *Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := doc.SuggestedName()
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("refusing unsafe filename %q", name)
	}
	dir := f.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
