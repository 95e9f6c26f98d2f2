// Package lsp serves pipeline diagnostics to editors over the Language
// Server Protocol. Every open or change notification re-parses the file,
// re-runs the pipeline, and publishes the accumulated diagnostics.
package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"veil/grammar"
	"veil/internal/errors"
	"veil/internal/pipeline"
)

var log = commonlog.GetLogger("veil.lsp")

// Handler implements the LSP server handlers for Veil.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

// Initialize advertises the server's capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen compiles the opened file and publishes diagnostics.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.store(params.TextDocument.URI, params.TextDocument.Text)
	h.publish(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

// TextDocumentDidChange recompiles on every full-document change.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			h.store(params.TextDocument.URI, whole.Text)
			h.publish(ctx, params.TextDocument.URI, whole.Text)
		}
	}
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, string(params.TextDocument.URI))
	return nil
}

func (h *Handler) store(uri protocol.DocumentUri, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.content[string(uri)] = text
}

// publish runs the compiler over the buffer and notifies the client.
func (h *Handler) publish(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	path, err := uriToPath(string(uri))
	if err != nil {
		log.Errorf("bad document URI %s: %s", uri, err)
		return
	}

	var diagnostics []protocol.Diagnostic
	program, err := grammar.ParseSource(path, text)
	if err != nil {
		diagnostics = convertParseError(err)
	} else {
		handler := errors.NewHandler()
		if _, _, runErr := pipeline.New(handler, pipeline.Options{}).Run(program); runErr != nil {
			log.Errorf("pipeline failed on %s: %s", path, runErr)
		}
		diagnostics = convertCompilerErrors(append(handler.Errors(), handler.Warnings()...))
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// uriToPath converts a file URI to a platform-local path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
