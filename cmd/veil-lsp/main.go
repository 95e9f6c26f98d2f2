// SPDX-License-Identifier: Apache-2.0
package main

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"veil/internal/lsp"
)

const lsName = "veil"

var (
	version = "0.1.0"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	veilHandler := lsp.NewHandler()

	handler = protocol.Handler{
		Initialize:            veilHandler.Initialize,
		Initialized:           veilHandler.Initialized,
		Shutdown:              veilHandler.Shutdown,
		SetTrace:              veilHandler.SetTrace,
		TextDocumentDidOpen:   veilHandler.TextDocumentDidOpen,
		TextDocumentDidChange: veilHandler.TextDocumentDidChange,
		TextDocumentDidClose:  veilHandler.TextDocumentDidClose,
	}

	srv := server.NewServer(&handler, lsName, false)
	if err := srv.RunStdio(); err != nil {
		panic(err)
	}
}
