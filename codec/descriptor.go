package codec

// Descriptor is the zarr.json representation of one codec in the chain.
type Descriptor struct {
	Name          string         `json:"name"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// BuildAll constructs a Pipeline from the codecs array stored in array
// metadata, in the order given.
func BuildAll(descriptors []Descriptor) (*Pipeline, error) {
	codecs := make([]Codec, 0, len(descriptors))
	for _, d := range descriptors {
		c, err := Build(d.Name, d.Configuration)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, c)
	}
	return NewPipeline(codecs)
}

// Descriptors reports the descriptor form of a Pipeline's codecs, the
// inverse of BuildAll, for writing back to zarr.json.
func (p *Pipeline) Descriptors() []Descriptor {
	out := make([]Descriptor, len(p.codecs))
	for i, c := range p.codecs {
		type configurable interface{ Configuration() map[string]any }
		var cfg map[string]any
		if cc, ok := c.(configurable); ok {
			cfg = cc.Configuration()
		}
		out[i] = Descriptor{Name: c.Name(), Configuration: cfg}
	}
	return out
}
