package codec

// Group is a flyweight over one repeating-group region. It is wrapped at
// the current sequential position, reads or writes the dimension header,
// then iterates elements forward only. Element fields resolve against the
// element the iterator currently points at.
type Group struct {
	body
	codec       *GroupCodec
	blockLength int
	count       int
	index       int
}

// DecodeGroup wraps the named group at the current position for reading.
// The element block length comes from the dimension header, so elements of
// a newer writer with a larger block are stepped over intact.
func (b *body) DecodeGroup(g *GroupCodec) (*Group, error) {
	at := b.cur.pos
	if at+g.HeaderLength > len(b.cur.buf) {
		return nil, newBounds(g.Name, at, "dimension header of %d bytes at %d exceeds buffer of %d",
			g.HeaderLength, at, len(b.cur.buf))
	}
	dims := view{buf: b.cur.buf, base: at}
	blockLength, err := dims.loadBits(g.DimBlockLen.Offset, g.DimBlockLen.Type.Size(), g.DimBlockLen.Order)
	if err != nil {
		return nil, err
	}
	count, err := dims.loadBits(g.DimNumIn.Offset, g.DimNumIn.Type.Size(), g.DimNumIn.Order)
	if err != nil {
		return nil, err
	}
	if err := b.cur.seek(g.Name, at+g.HeaderLength); err != nil {
		return nil, err
	}
	return &Group{
		body: body{
			view:    view{buf: b.cur.buf},
			cur:     b.cur,
			version: b.version,
		},
		codec:       g,
		blockLength: int(blockLength),
		count:       int(count),
		index:       -1,
	}, nil
}

// EncodeGroup wraps the named group at the current position for writing
// count elements. A count outside the declared range is a range violation
// before anything is written.
func (b *body) EncodeGroup(g *GroupCodec, count int) (*Group, error) {
	if count < 0 || uint64(count) < g.MinCount || uint64(count) > g.MaxCount {
		return nil, newRange(g.Name, "count %d outside declared range [%d, %d]",
			count, g.MinCount, g.MaxCount)
	}
	at := b.cur.pos
	if at+g.HeaderLength > len(b.cur.buf) {
		return nil, newBounds(g.Name, at, "dimension header of %d bytes at %d exceeds buffer of %d",
			g.HeaderLength, at, len(b.cur.buf))
	}
	dims := view{buf: b.cur.buf, base: at}
	if err := dims.storeBits(g.DimBlockLen.Offset, g.DimBlockLen.Type.Size(), g.DimBlockLen.Order,
		uint64(g.BlockLength)); err != nil {
		return nil, err
	}
	if err := dims.storeBits(g.DimNumIn.Offset, g.DimNumIn.Type.Size(), g.DimNumIn.Order,
		uint64(count)); err != nil {
		return nil, err
	}
	if err := b.cur.seek(g.Name, at+g.HeaderLength); err != nil {
		return nil, err
	}
	return &Group{
		body: body{
			view:    view{buf: b.cur.buf},
			cur:     b.cur,
			version: b.version,
		},
		codec:       g,
		blockLength: g.BlockLength,
		count:       count,
		index:       -1,
	}, nil
}

// Codec returns the resolved contract this flyweight is bound to.
func (g *Group) Codec() *GroupCodec { return g.codec }

// Field returns the named element-block field codec.
func (g *Group) Field(name string) (*FieldCodec, bool) { return g.codec.Field(name) }

// Count is the element count from the dimension header.
func (g *Group) Count() int { return g.count }

// Index is the zero-based position of the current element, -1 before the
// first call to Next.
func (g *Group) Index() int { return g.index }

// ActingBlockLength is the per-element block length from the dimension
// header.
func (g *Group) ActingBlockLength() int { return g.blockLength }

// HasNext reports whether another element remains.
func (g *Group) HasNext() bool { return g.index+1 < g.count }

// Next advances to the next element, bounds-checking one element block and
// claiming it from the shared cursor. Field access then resolves against
// the new element. Advancing past the last element is a bounds violation.
func (g *Group) Next() error {
	if !g.HasNext() {
		return newBounds(g.codec.Name, g.index, "advance past element %d of %d", g.index, g.count)
	}
	at := g.cur.pos
	if at+g.blockLength > len(g.cur.buf) {
		return newBounds(g.codec.Name, at, "element block of %d bytes at %d exceeds buffer of %d",
			g.blockLength, at, len(g.cur.buf))
	}
	if err := g.cur.seek(g.codec.Name, at+g.blockLength); err != nil {
		return err
	}
	g.view.base = at
	g.index++
	return nil
}
