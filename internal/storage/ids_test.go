package storage

import "github.com/ifaizanrathore/workora-eta-engine/internal/core"

var testIDs = core.NewIDGenerator()

// newEntryID produces ledger-entry IDs for test fixtures.
func newEntryID() string {
	return testIDs.GenerateID()
}
