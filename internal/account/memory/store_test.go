package memory

import (
	"testing"

	"cookinghub/internal/account/tests"
)

func TestAccount_MemoryStore(t *testing.T) {
	testStore := NewInMemory()
	teardown := func() {
		testStore.(*memory).reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}
