package worker

import (
	"github.com/spec-kit/freshdesk-migrator/internal/service"
)

// StartLedgerRecorder registers the ledger's event handlers.
func StartLedgerRecorder(ledger *service.LedgerService) {
	if ledger == nil {
		return
	}
	ledger.RegisterHandlers()
}
