package recipe

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genesis/internal/element"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	table, err := Default()
	require.NoError(t, err)
	return table
}

func entry(a, b, id, name string) Entry {
	return Entry{
		Inputs: [2]string{a, b},
		Result: element.Definition{ID: id, Name: name, Type: element.TypeMatter, Era: element.EraNature},
	}
}

func TestPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("火花", "虚空"), PairKey("虚空", "火花"))
	assert.Equal(t, PairKey("Fire", " water"), PairKey("WATER", "fire"))
	assert.Equal(t, "fire+water", PairKey("Water", "Fire"))
	assert.Equal(t, "鱼+鱼", PairKey("鱼", "鱼"))
}

func TestDefault_LiteralScenarios(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		a, b string
		want string
	}{
		{"火花", "虚空", "能量"},
		{"虚空", "火花", "能量"},
		{"能量", "虚空", "物质"},
		{"鱼", "泥土", "动物"},
		{"泥土", "鱼", "动物"},
		{"物质", "物质", "引力"},
		{"人类", "人类", "社会"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"+"+tt.b, func(t *testing.T) {
			got, ok := table.Lookup(tt.a, tt.b)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Result.Name)
		})
	}

	_, ok := table.Lookup("鱼", "鱼")
	assert.False(t, ok)
}

func TestDefault_CarriesEra(t *testing.T) {
	table := defaultTable(t)

	got, ok := table.Lookup("鱼", "泥土")
	require.True(t, ok)
	assert.Equal(t, "animal", got.Result.ID)
	assert.Equal(t, element.EraLife, got.Result.Era)
	assert.Equal(t, element.TypeLife, got.Result.Type)
}

func TestDefault_CommutativeForEveryPair(t *testing.T) {
	table := defaultTable(t)
	for _, e := range table.Entries() {
		ab, ok1 := table.Lookup(e.Inputs[0], e.Inputs[1])
		ba, ok2 := table.Lookup(e.Inputs[1], e.Inputs[0])
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, ab.Result, ba.Result)
	}
}

func TestDefault_LaterRuleWinsCollision(t *testing.T) {
	entries, err := DefaultEntries()
	require.NoError(t, err)
	require.Len(t, entries, 92)

	table := Build(entries)
	assert.Equal(t, 91, table.Len())

	got, ok := table.Lookup("工具", "木材")
	require.True(t, ok)
	assert.Equal(t, "纸张", got.Result.Name)

	cs := Collisions(entries)
	require.Len(t, cs, 1)
	assert.Equal(t, "工具+木材", cs[0].Key)
	assert.Equal(t, "轮子", entries[cs[0].Earlier].Result.Name)
	assert.Equal(t, "纸张", entries[cs[0].Later].Result.Name)
}

func TestBuildStrict_RejectsCollisions(t *testing.T) {
	_, err := BuildStrict([]Entry{
		entry("a", "b", "x", "X"),
		entry("b", "a", "y", "Y"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a+b")

	table, err := BuildStrict([]Entry{entry("a", "b", "x", "X")})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestTable_EraOf(t *testing.T) {
	table := defaultTable(t)

	assert.Equal(t, element.EraGenesis, table.EraOf("火花"))
	assert.Equal(t, element.EraGenesis, table.EraOf("虚空"))
	assert.Equal(t, element.EraNature, table.EraOf("水"))
	assert.Equal(t, element.EraSingularity, table.EraOf("奇点"))
	assert.Equal(t, element.EraGenesis, table.EraOf("从未见过的东西"))
}

func TestTable_DefinitionByName(t *testing.T) {
	table := defaultTable(t)

	def, ok := table.DefinitionByName("蒸汽机")
	require.True(t, ok)
	assert.Equal(t, "steam_engine", def.ID)

	seed, ok := table.DefinitionByName("火花")
	require.True(t, ok)
	assert.Equal(t, element.Spark, seed)

	_, ok = table.DefinitionByName("星系")
	assert.False(t, ok)
}

func TestTable_Reachable(t *testing.T) {
	table := defaultTable(t)

	reached := table.Reachable(element.Spark.Name, element.Void.Name)
	require.Len(t, reached, 67)
	assert.Equal(t, "能量", reached[0].Name)
	assert.Equal(t, "物质", reached[1].Name)

	names := make(map[string]bool, len(reached))
	for _, def := range reached {
		names[def.Name] = true
	}
	assert.True(t, names["动物"])
	assert.True(t, names["纸张"])
	// Shadowed by the collision, and everything downstream of it.
	assert.False(t, names["轮子"])
	assert.False(t, names["马车"])
	// Needs an input only the generative path can invent.
	assert.False(t, names["望远镜"])
}

func TestTable_Golden(t *testing.T) {
	table := defaultTable(t)

	var buf bytes.Buffer
	for _, key := range table.Keys() {
		e, _ := table.LookupKey(key)
		fmt.Fprintf(&buf, "%s => %s %s (%s)\n", key, e.Result.Emoji, e.Result.Name, e.Result.Era)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "default_table", buf.Bytes())
}
