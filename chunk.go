package lattice

import (
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// chunk is a fixed-capacity slab: one entity-ID column plus one raw
// byte column per non-tag archetype component. Rows [0,count) are
// live; [count,capacity) are uninitialized.
type chunk struct {
	owner    *Archetype
	entities []Entity
	columns  [][]byte // indexed by Archetype.columnIndex[id]
	sizes    []int    // component size per column, parallel to columns
	count    int
	capacity int
}

func newChunk(a *Archetype) (*chunk, error) {
	c := &chunk{
		owner:    a,
		capacity: a.rowsPerChunk,
		entities: make([]Entity, a.rowsPerChunk),
	}
	c.columns = make([][]byte, len(a.columnIndex))
	c.sizes = make([]int, len(a.columnIndex))
	for id, col := range a.columnIndex {
		desc, err := a.world.components.layout(id)
		if err != nil {
			return nil, err
		}
		buf, ok := a.world.allocator.Alloc(desc.Size*a.rowsPerChunk, desc.Align)
		if !ok {
			c.free()
			return nil, AllocationFailedError{Reason: "chunk column allocation failed"}
		}
		c.columns[col] = buf
		c.sizes[col] = desc.Size
	}
	return c, nil
}

func (c *chunk) free() {
	for _, col := range c.columns {
		c.owner.world.allocator.Free(col)
	}
}

// componentPtr returns a pointer to the component's storage at row, or
// nil for a tag component (which has no column).
func (c *chunk) componentPtr(id ComponentID, row int) unsafe.Pointer {
	col, ok := c.owner.columnIndex[id]
	if !ok {
		return nil
	}
	size := c.sizes[col]
	if size == 0 {
		return nil
	}
	return unsafe.Pointer(&c.columns[col][row*size])
}

// allocRow finds the first chunk in the archetype with spare capacity,
// allocating a new one if none exists, and reserves a row in it.
func allocRow(a *Archetype) (*chunk, int, error) {
	for _, ch := range a.chunks {
		if ch.count < ch.capacity {
			row := ch.count
			ch.count++
			return ch, row, nil
		}
	}
	ch, err := newChunk(a)
	if err != nil {
		return nil, 0, err
	}
	a.chunks = append(a.chunks, ch)
	a.world.totalChunkCount++
	row := ch.count
	ch.count++
	return ch, row, nil
}

// moveRow transfers every non-tag component of srcRow in the source
// chunk into dstRow of the destination chunk, for every component id
// common to both. Falls back to a raw byte copy when no Move hook (or
// FlagTriviallyRelocatable) is declared.
func moveRow(dst *chunk, dstRow int, src *chunk, srcRow int, w *World) {
	for id, dstCol := range dst.owner.columnIndex {
		srcCol, ok := src.owner.columnIndex[id]
		if !ok {
			continue
		}
		size := dst.sizes[dstCol]
		if size == 0 {
			continue
		}
		dstPtr := unsafe.Pointer(&dst.columns[dstCol][dstRow*size])
		srcPtr := unsafe.Pointer(&src.columns[srcCol][srcRow*size])
		desc, _ := w.components.layout(id)
		if desc.Move != nil && desc.Flags&FlagTriviallyRelocatable == 0 {
			desc.Move(dstPtr, srcPtr)
		} else {
			copy(dst.columns[dstCol][dstRow*size:dstRow*size+size], src.columns[srcCol][srcRow*size:srcRow*size+size])
		}
	}
}

// swapRemove removes row from the chunk, moving the last live row into
// its place (with component Move hooks) and updating the moved
// entity's slot back-pointer. Returns true if a row was moved (i.e.
// row was not already the last).
func swapRemove(w *World, ch *chunk, row int) bool {
	if row < 0 || row >= ch.count {
		panic(bark.AddTrace(invariantError{"swap-remove row out of range"}))
	}
	last := ch.count - 1
	moved := false
	if row != last {
		movedEntity := ch.entities[last]
		ch.entities[row] = movedEntity
		for id, col := range ch.owner.columnIndex {
			size := ch.sizes[col]
			if size == 0 {
				continue
			}
			dstPtr := unsafe.Pointer(&ch.columns[col][row*size])
			srcPtr := unsafe.Pointer(&ch.columns[col][last*size])
			desc, _ := w.components.layout(id)
			if desc.Move != nil && desc.Flags&FlagTriviallyRelocatable == 0 {
				desc.Move(dstPtr, srcPtr)
			} else {
				copy(ch.columns[col][row*size:row*size+size], ch.columns[col][last*size:last*size+size])
			}
		}
		if s, err := w.entities.resolve(movedEntity); err == nil {
			s.loc.chunk = ch
			s.loc.row = row
		}
		w.structuralMoves++
		moved = true
	}
	ch.count--
	return moved
}
