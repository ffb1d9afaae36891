package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHas(t *testing.T) {
	set := []string{ViewOffers, CreateOffers}
	assert.True(t, Has(set, ViewOffers))
	assert.False(t, Has(set, DeleteOffers))
	assert.False(t, Has(nil, ViewOffers))
}

func TestHasAll(t *testing.T) {
	set := []string{ViewCustomers, EditCustomers, ViewOffers}

	assert.True(t, HasAll(set, []string{ViewCustomers, ViewOffers}))
	assert.False(t, HasAll(set, []string{ViewCustomers, DeleteCustomers}))
	// vacuous truth on empty requirement
	assert.True(t, HasAll(set, nil))
	assert.True(t, HasAll(nil, nil))
	// empty set never satisfies a non-empty requirement
	assert.False(t, HasAll(nil, []string{ViewCustomers}))
}

func TestHasAny(t *testing.T) {
	set := []string{ViewProducts}

	assert.True(t, HasAny(set, []string{DeleteProducts, ViewProducts}))
	assert.False(t, HasAny(set, []string{DeleteProducts, EditProducts}))
	assert.False(t, HasAny(set, nil))
	assert.False(t, HasAny(nil, []string{ViewProducts}))
}

func TestClosedSet(t *testing.T) {
	all := All()
	assert.Equal(t, len(Descriptions), len(all))
	for _, k := range all {
		assert.True(t, Known(k), "key %s missing description", k)
	}
	assert.False(t, Known("DO_ANYTHING"))
	for _, k := range ViewOnly() {
		assert.True(t, Known(k))
	}
}
