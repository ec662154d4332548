package memory_test

import (
	"testing"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/nhatro/ownerportal/internal/portal/store/drivers/memory"
	"github.com/nhatro/ownerportal/internal/portal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.NewStore()
	})
}
