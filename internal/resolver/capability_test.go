package resolver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genesis/internal/element"
)

func TestParseResponse_Success(t *testing.T) {
	v, err := ParseResponse([]byte(schoolOfFish))
	require.NoError(t, err)

	assert.True(t, v.Success)
	assert.Equal(t, "鱼儿聚集成群。", v.FlavorText)
	require.NotNil(t, v.Element)
	assert.Equal(t, Candidate{Name: "鱼群", Emoji: "🐟", Description: "成群结队的鱼。", Type: element.TypeLife}, *v.Element)
}

func TestParseResponse_DeclineIgnoresElement(t *testing.T) {
	v, err := ParseResponse([]byte(`{"success": false, "flavorText": " 无事发生。 ", "newElement": null}`))
	require.NoError(t, err)

	assert.False(t, v.Success)
	assert.Equal(t, "无事发生。", v.FlavorText)
	assert.Nil(t, v.Element)
}

func TestParseResponse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"empty", ``, "decode response"},
		{"array", `[]`, "decode response"},
		{"trailing", `{"success": false, "flavorText": "x"} {}`, "trailing data"},
		{"no success", `{"flavorText": "x"}`, "success is required"},
		{"blank flavor", `{"success": false, "flavorText": "  "}`, "flavorText is required"},
		{"no name", `{"success": true, "flavorText": "x", "newElement": {"emoji": "e", "description": "d", "type": "life"}}`, "newElement.name"},
		{"no emoji", `{"success": true, "flavorText": "x", "newElement": {"name": "n", "description": "d", "type": "life"}}`, "newElement.emoji"},
		{"no description", `{"success": true, "flavorText": "x", "newElement": {"name": "n", "emoji": "e", "type": "life"}}`, "newElement.description"},
		{"no type", `{"success": true, "flavorText": "x", "newElement": {"name": "n", "emoji": "e", "description": "d"}}`, "<missing>"},
		{"nested extra", `{"success": true, "flavorText": "x", "newElement": {"name": "n", "emoji": "e", "description": "d", "type": "life", "id": "x"}}`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse([]byte(tt.payload))
			require.Error(t, err)
			assert.True(t, IsKind(err, KindMalformed))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResponseSchema_IsStrict(t *testing.T) {
	schema := ResponseSchema()
	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	assert.Equal(t, false, schema["additionalProperties"])
	assert.Contains(t, string(raw), `"newElement"`)
	assert.Contains(t, string(raw), `"primordial"`)
}

func TestPreamble_NamesEveryEra(t *testing.T) {
	p := Preamble()
	for _, era := range element.Eras() {
		assert.Contains(t, p, string(era))
	}
}

func TestIsTransportFailure(t *testing.T) {
	err := &Error{Kind: KindTimeout, Message: "slow"}
	assert.True(t, IsTransportFailure(err))
	assert.False(t, IsTransportFailure(assert.AnError))
	assert.Equal(t, "TIMEOUT: slow", err.Error())
}
