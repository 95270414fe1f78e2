package element

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_Valid(t *testing.T) {
	for _, ty := range Types() {
		assert.True(t, ty.Valid(), "type %q", ty)
	}
	assert.False(t, Type("plasma").Valid())
	assert.False(t, Type("").Valid())
}

func TestEra_RankFollowsProgression(t *testing.T) {
	all := Eras()
	require.Len(t, all, 10)
	for i, era := range all {
		assert.Equal(t, i, era.Rank())
	}
	assert.Equal(t, -1, Era("").Rank())
	assert.Equal(t, -1, Era("青铜时代").Rank())
	assert.False(t, Era("").Valid())
}

func TestLater(t *testing.T) {
	assert.Equal(t, EraLife, Later(EraGenesis, EraLife))
	assert.Equal(t, EraLife, Later(EraLife, EraGenesis))
	assert.Equal(t, EraNature, Later("", EraNature))
	assert.Equal(t, EraNature, Later(EraNature, "unknown"))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"identical", "能量", "能量", true},
		{"surrounding whitespace", "  能量\t", "能量", true},
		{"ascii case", "Steam", "steam", true},
		{"fold beyond ascii", "ÉCLAIR", "éclair", true},
		{"nfc vs nfd", "caf\u00e9", "cafe\u0301", true},
		{"different", "火花", "虚空", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, SameName(tt.a, tt.b))
		})
	}
	assert.Equal(t, "", NormalizeName("   "))
}

func TestInstance_JSONShape(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	inst := Spark.Discover(at).Place("inst-1", 10, 20)

	raw, err := json.Marshal(inst)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "inst-1", fields["instanceId"])
	assert.Equal(t, "spark", fields["elementId"])
	assert.Equal(t, "spark", fields["id"])
	assert.Equal(t, "火花", fields["name"])
	assert.Equal(t, float64(10), fields["x"])
	assert.Equal(t, float64(20), fields["y"])

	var back Instance
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, inst, back)
}

func TestSeeds(t *testing.T) {
	seeds := Seeds(time.Unix(0, 0))
	require.Len(t, seeds, 2)
	assert.Equal(t, "火花", seeds[0].Name)
	assert.Equal(t, "虚空", seeds[1].Name)
	for _, s := range seeds {
		assert.Equal(t, TypePrimordial, s.Type)
		assert.Equal(t, EraGenesis, s.Era)
	}
}
