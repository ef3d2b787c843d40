package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	got, err := ParseFields([]string{"line", "phone", "line"})
	require.NoError(t, err)
	assert.Equal(t, []FieldKey{FieldPhone, FieldLine}, got)

	_, err = ParseFields([]string{"phone", "email"})
	assert.Error(t, err)
}

func TestFieldSetOps(t *testing.T) {
	a := []FieldKey{FieldFrame, FieldPhone}
	b := []FieldKey{FieldPhone, FieldBroker}

	assert.Equal(t, []FieldKey{FieldBroker, FieldPhone, FieldFrame}, UnionFields(a, b))
	assert.Equal(t, []FieldKey{FieldFrame}, SubtractFields(a, b))
	assert.Equal(t, []FieldKey{FieldPhone}, IntersectFields(a, b))
	assert.True(t, IsSubset([]FieldKey{FieldPhone}, a))
	assert.False(t, IsSubset(b, a))
	assert.NotNil(t, NormalizeFields(nil))
}

func TestPrices(t *testing.T) {
	var total int64
	for _, f := range AllFieldKeys {
		total += f.Price()
	}
	assert.Equal(t, int64(750), total)
	assert.Equal(t, int64(350), PriceOf([]FieldKey{FieldLine, FieldPhone, FieldPhone}))
	assert.Equal(t, []PricedField{{FieldContactOwner, 50}, {FieldChanote, 200}}, PriceList([]FieldKey{FieldChanote, FieldContactOwner}))
	assert.Zero(t, FieldKey("email").Price())
}
