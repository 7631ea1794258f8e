package lang

// Interner is the process-wide (per-VM, in this embeddable form) mapping
// from character content to the canonical string object, per spec.md §3/§4.5.
// Every newly created string is deduplicated through it so that handle
// equality coincides with content equality.
type Interner struct {
	strings map[string]*ObjString
}

func newInterner() *Interner {
	return &Interner{strings: make(map[string]*ObjString)}
}

// Intern returns the canonical *ObjString for chars, creating and recording
// one on first sight. This is both copyString and takeString from spec.md
// §4.5: since Go strings are immutable values rather than owned buffers,
// there is no separate "take ownership of an already-allocated buffer" path
// to distinguish — interning is a single lookup-or-insert.
func (in *Interner) Intern(chars string) *ObjString {
	if s, ok := in.strings[chars]; ok {
		return s
	}
	s := &ObjString{Chars: chars, Hash: hashString(chars)}
	in.strings[chars] = s
	return s
}

// Keys exposes the interner's live strings, part of the GC root set per
// spec.md §5.
func (in *Interner) Keys() []*ObjString {
	out := make([]*ObjString, 0, len(in.strings))
	for _, s := range in.strings {
		out = append(out, s)
	}
	return out
}
