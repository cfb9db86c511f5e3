//go:build integration

package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore/storetest"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/testutil"
)

func TestPostgresStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) docstore.Store {
		db := testutil.SetupTestDB(t)
		s := docstore.NewPostgresStore(db)
		require.NoError(t, s.EnsureSchema(context.Background()))
		testutil.CleanupTestDB(t, db)
		return s
	})
}
