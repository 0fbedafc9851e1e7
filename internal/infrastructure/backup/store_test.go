package backup

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord() *entity.FailedTransaction {
	product := entity.NewProduct("Tea", "TEA", decimal.NewFromInt(50), decimal.Zero, 0)
	return &entity.FailedTransaction{
		CheckoutKey: uuid.New(),
		Items: []entity.LineItem{{
			LineID:    uuid.New(),
			Product:   product,
			Quantity:  decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromInt(50),
		}},
		CustomerName:     entity.WalkInCustomerName,
		PaidAmount:       decimal.NewFromInt(100),
		FailureComponent: enum.FailureDatabase,
		ErrorDetail:      "connection refused",
		CanRetry:         true,
		Status:           enum.FailedPending,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, "/var/pos/failed")
	require.NoError(t, err)

	record := newRecord()
	key, err := store.Write(record)
	require.NoError(t, err)
	assert.Equal(t, record.ID.String(), key)

	records, err := store.ReadAll()
	require.NoError(t, err)
	require.Contains(t, records, key)

	got := records[key]
	assert.Equal(t, enum.FailureDatabase, got.FailureComponent)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Total().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Tea", got.Items[0].Product.Name)

	require.NoError(t, store.Remove(key))
	require.NoError(t, store.Remove(key))

	records, err = store.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreSkipsCorruptFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, "/backup")
	require.NoError(t, err)

	key, err := store.Write(newRecord())
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/backup/broken.json", []byte("{"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/backup/notes.txt", []byte("ignored"), 0o644))

	records, err := store.ReadAll()
	assert.Error(t, err)
	assert.Len(t, records, 1)
	assert.Contains(t, records, key)
}
