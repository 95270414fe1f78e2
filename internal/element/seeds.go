package element

import "time"

// Seed definitions every fresh library starts with.
var (
	Spark = Definition{
		ID:          "spark",
		Name:        "火花",
		Emoji:       "✨",
		Description: "虚空中残留的一丝微弱能量。",
		Type:        TypePrimordial,
		Era:         EraGenesis,
	}
	Void = Definition{
		ID:          "void",
		Name:        "虚空",
		Emoji:       "⚫",
		Description: "无尽的虚无。",
		Type:        TypePrimordial,
		Era:         EraGenesis,
	}
)

// Seeds returns fresh library records for the two primordial elements.
func Seeds(now time.Time) []Record {
	return []Record{Spark.Discover(now), Void.Discover(now)}
}
