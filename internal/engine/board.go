package engine

import (
	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/ids"
)

// Board is the set of placed instances, in placement order. Instances
// are never deduplicated.
//
// A Board is not safe for concurrent use. The Engine guards its own copy
// and hands out clones.
type Board struct {
	instances []element.Instance
	idGen     ids.Generator
}

func newBoard(idGen ids.Generator) *Board {
	return &Board{idGen: idGen}
}

// Spawn places a new instance of r at (x, y) and returns it.
func (b *Board) Spawn(r element.Record, x, y float64) element.Instance {
	inst := r.Place(b.idGen.Generate(), x, y)
	b.instances = append(b.instances, inst)
	return inst
}

func (b *Board) restore(instances []element.Instance) {
	b.instances = make([]element.Instance, 0, len(instances))
	seen := make(map[string]bool, len(instances))
	for _, inst := range instances {
		if inst.InstanceID == "" || seen[inst.InstanceID] {
			continue
		}
		seen[inst.InstanceID] = true
		b.instances = append(b.instances, inst)
	}
}

func (b *Board) index(instanceID string) int {
	for i := range b.instances {
		if b.instances[i].InstanceID == instanceID {
			return i
		}
	}
	return -1
}

// Move repositions an instance. Unknown ids are ignored; it reports
// whether anything moved.
func (b *Board) Move(instanceID string, x, y float64) bool {
	i := b.index(instanceID)
	if i < 0 {
		return false
	}
	b.instances[i].X = x
	b.instances[i].Y = y
	return true
}

// Remove deletes an instance and reports whether it existed.
func (b *Board) Remove(instanceID string) bool {
	i := b.index(instanceID)
	if i < 0 {
		return false
	}
	b.instances = append(b.instances[:i], b.instances[i+1:]...)
	return true
}

// Clear removes every instance.
func (b *Board) Clear() {
	b.instances = nil
}

// Instance returns the instance with the given id.
func (b *Board) Instance(instanceID string) (element.Instance, bool) {
	i := b.index(instanceID)
	if i < 0 {
		return element.Instance{}, false
	}
	return b.instances[i], true
}

// Instances returns the instances in placement order.
func (b *Board) Instances() []element.Instance {
	out := make([]element.Instance, len(b.instances))
	copy(out, b.instances)
	return out
}

// Len returns the number of placed instances.
func (b *Board) Len() int {
	return len(b.instances)
}

// Clone returns an independent copy sharing the id generator.
func (b *Board) Clone() *Board {
	return &Board{instances: b.Instances(), idGen: b.idGen}
}
