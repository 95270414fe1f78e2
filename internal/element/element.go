package element

import "time"

// Definition is an element type as produced by a recipe or a generative
// capability. It carries no discovery timestamp; see Record.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	Era         Era    `json:"era,omitempty"`
}

// Key returns the normalized identity of the definition.
func (d Definition) Key() string {
	return NormalizeName(d.Name)
}

// Record is a Definition that has entered the library.
// Records are immutable once created.
type Record struct {
	Definition
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// Discover stamps d with the discovery time.
func (d Definition) Discover(at time.Time) Record {
	return Record{Definition: d, DiscoveredAt: at}
}

// Instance is one placement of a Record on the board. Many instances may
// share an ElementID; InstanceID is unique per placement.
type Instance struct {
	Record
	InstanceID string  `json:"instanceId"`
	ElementID  string  `json:"elementId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// Place creates an instance of r at (x, y) with the given instance id.
func (r Record) Place(instanceID string, x, y float64) Instance {
	return Instance{
		Record:     r,
		InstanceID: instanceID,
		ElementID:  r.ID,
		X:          x,
		Y:          y,
	}
}
