//go:build integration

package docstore_test

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore/storetest"
)

// Runs against the Firestore emulator. Each subtest uses a fresh project id
// so collections never leak between runs.
func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	storetest.Run(t, func(t *testing.T) docstore.Store {
		client, err := firestore.NewClient(context.Background(), "test-"+uuid.NewString()[:8])
		require.NoError(t, err)
		s := docstore.NewFirestoreStore(client)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
