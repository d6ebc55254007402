package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOnAdvertisementAddsNewDevice(t *testing.T) {
	r := NewRegistry(nil)
	r.onAdvertisement(advertisement{MAC: "aa:bb", IP: "127.0.0.1", Name: "Vest", Port: 1234})

	devices := r.Snapshot()
	require.Len(t, devices, 1)
	assert.Equal(t, "aa:bb", devices[0].ID)
	devices[0].Stop()
}

func TestRegistryOnAdvertisementResetsExistingDevice(t *testing.T) {
	r := NewRegistry(nil)
	r.onAdvertisement(advertisement{MAC: "aa:bb", IP: "127.0.0.1", Name: "Vest", Port: 1234})
	d := r.Snapshot()[0]
	d.mu.Lock()
	d.state = Running
	d.mu.Unlock()

	r.onAdvertisement(advertisement{MAC: "aa:bb", IP: "127.0.0.1", Name: "Vest", Port: 1234})

	assert.Len(t, r.Snapshot(), 1, "duplicate advertisement must not add a second device")
	assert.Equal(t, NeedsPing, d.state)
	d.Stop()
}

func TestRegistryOnAdvertisementRestoresPersistedSensMult(t *testing.T) {
	store := newFakeFactorStore()
	store.set("aa:bb", "sens_mult", 0.5)

	r := NewRegistry(store)
	r.onAdvertisement(advertisement{MAC: "aa:bb", IP: "127.0.0.1", Name: "Vest", Port: 1234})

	d := r.Snapshot()[0]
	assert.Equal(t, float32(0.5), d.sensMult)
	d.Stop()
}

func TestRegistryDropDeadRemovesOnlyDeadDevices(t *testing.T) {
	r := NewRegistry(nil)
	r.onAdvertisement(advertisement{MAC: "alive", IP: "127.0.0.1", Port: 1})
	r.onAdvertisement(advertisement{MAC: "dead", IP: "127.0.0.1", Port: 2})

	for _, d := range r.Snapshot() {
		if d.ID == "dead" {
			d.mu.Lock()
			d.alive = false
			d.mu.Unlock()
		}
	}

	r.DropDead()
	devices := r.Snapshot()
	require.Len(t, devices, 1)
	assert.Equal(t, "alive", devices[0].ID)
	devices[0].Stop()
}

type fakeFactorStore struct {
	values map[string]float32
}

func newFakeFactorStore() *fakeFactorStore {
	return &fakeFactorStore{values: make(map[string]float32)}
}

func (f *fakeFactorStore) key(id, field string) string { return id + "/" + field }

func (f *fakeFactorStore) set(id, field string, v float32) {
	f.values[f.key(id, field)] = v
}

func (f *fakeFactorStore) GetFactor(id, field string) (float32, bool) {
	v, ok := f.values[f.key(id, field)]
	return v, ok
}

func (f *fakeFactorStore) SetFactor(id, field string, value float32) error {
	f.set(id, field, value)
	return nil
}
