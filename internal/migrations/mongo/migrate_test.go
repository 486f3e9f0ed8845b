package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_CoverEveryStore(t *testing.T) {
	names := map[string]bool{}
	for _, def := range Collections() {
		names[def.Name] = true
		assert.NotEmpty(t, def.Indexes, def.Name)
		assert.Contains(t, def.Validator, "$jsonSchema", def.Name)
	}
	assert.Equal(t, map[string]bool{"Users": true, "Doctors": true, "Appointments": true, "Slot_locks": true}, names)
}

func TestActiveSlotIndexIsUniqueAndPartial(t *testing.T) {
	idx := AppointmentsIndexes[0]
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	assert.Equal(t, bson.D{{Key: "active", Value: true}}, idx.Options.PartialFilterExpression)

	keys, ok := idx.Keys.(bson.D)
	require.True(t, ok)
	assert.Equal(t, []string{"doctor_id", "appointment_date", "appointment_time"}, []string{keys[0].Key, keys[1].Key, keys[2].Key})
}

func TestSlotLockTTL(t *testing.T) {
	idx := SlotLocksIndexes[0]
	require.NotNil(t, idx.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *idx.Options.ExpireAfterSeconds)
}
