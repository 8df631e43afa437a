package wire

// Dynamic is a shadow for messages without a Go struct. It holds one
// callback per descriptor field, by position, and one Oneof per oneof
// group. Slots for oneof members are ignored.
type Dynamic struct {
	desc   *MessageDescriptor
	Fields []Callback
	Oneofs []Oneof
}

// NewDynamic returns an empty shadow sized for desc.
func NewDynamic(desc *MessageDescriptor) *Dynamic {
	return &Dynamic{
		desc:   desc,
		Fields: make([]Callback, len(desc.Fields)),
		Oneofs: make([]Oneof, len(desc.Oneofs)),
	}
}

// Descriptor returns the descriptor the shadow was created for.
func (d *Dynamic) Descriptor() *MessageDescriptor {
	return d.desc
}

// Field returns the callback slot for a named field, nil if the
// descriptor has no such field.
func (d *Dynamic) Field(name string) *Callback {
	for i := range d.desc.Fields {
		if d.desc.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// Oneof returns the slot for a named oneof group.
func (d *Dynamic) Oneof(name string) *Oneof {
	if i := d.desc.OneofIndex(name); i >= 0 {
		return &d.Oneofs[i]
	}
	return nil
}
