package store_test

import (
	"testing"

	"github.com/Ashmit111/secure-scan/internal/store"
	"github.com/Ashmit111/secure-scan/internal/store/memory"
	pg "github.com/Ashmit111/secure-scan/internal/store/postgres"
	"github.com/Ashmit111/secure-scan/internal/store/sqlitedb"
)

// Compile-time interface satisfaction checks.
// Using an external test package avoids an import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ store.StatusStore = memory.New()
	var _ store.StatusStore = (*pg.Store)(nil)
	var _ store.StatusStore = (*sqlitedb.Store)(nil)
}
