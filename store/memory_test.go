package store_test

import (
	"testing"

	mbrand "code.meridianbank.io/meridian-go/libs/rand"
	"code.meridianbank.io/meridian-go/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Run("Setting then getting an entry round trips", testMemorySettingThenGettingEntryRoundTrips)
	t.Run("Getting a missing entry fails", testMemoryGettingMissingEntryFails)
	t.Run("Removing an entry makes it missing", testMemoryRemovingEntryMakesItMissing)
	t.Run("Removing a missing entry succeeds", testMemoryRemovingMissingEntrySucceeds)
	t.Run("Mutating a retrieved entry does not affect the store", testMemoryMutatingRetrievedEntryDoesNotAffectStore)
}

func testMemorySettingThenGettingEntryRoundTrips(t *testing.T) {
	// given
	memory := store.NewMemory()
	name := mbrand.RandomStr(5)
	data := []byte(mbrand.RandomStr(20))

	// when
	err := memory.Set(name, data)

	// then
	require.NoError(t, err)

	// when
	returnedData, err := memory.Get(name)

	// then
	require.NoError(t, err)
	assert.Equal(t, data, returnedData)
}

func testMemoryGettingMissingEntryFails(t *testing.T) {
	// given
	memory := store.NewMemory()

	// when
	returnedData, err := memory.Get(mbrand.RandomStr(5))

	// then
	require.ErrorIs(t, err, store.ErrEntryNotFound)
	assert.Nil(t, returnedData)
}

func testMemoryRemovingEntryMakesItMissing(t *testing.T) {
	// given
	memory := store.NewMemory()
	name := mbrand.RandomStr(5)

	// setup
	require.NoError(t, memory.Set(name, []byte(mbrand.RandomStr(20))))

	// when
	err := memory.Remove(name)

	// then
	require.NoError(t, err)

	// when
	returnedData, err := memory.Get(name)

	// then
	require.ErrorIs(t, err, store.ErrEntryNotFound)
	assert.Nil(t, returnedData)
}

func testMemoryRemovingMissingEntrySucceeds(t *testing.T) {
	// given
	memory := store.NewMemory()

	// when
	err := memory.Remove(mbrand.RandomStr(5))

	// then
	require.NoError(t, err)
}

func testMemoryMutatingRetrievedEntryDoesNotAffectStore(t *testing.T) {
	// given
	memory := store.NewMemory()
	name := mbrand.RandomStr(5)
	data := []byte(mbrand.RandomStr(20))

	// setup
	require.NoError(t, memory.Set(name, data))

	// when
	returnedData, err := memory.Get(name)

	// then
	require.NoError(t, err)

	// when
	returnedData[0] ^= 0xff
	untouchedData, err := memory.Get(name)

	// then
	require.NoError(t, err)
	assert.Equal(t, data, untouchedData)
}
