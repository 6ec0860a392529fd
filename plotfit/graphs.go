package plotfit

// Graph is one selected graph with its points and resolved style, for
// backends that draw without gonum/plot.
type Graph struct {
	Kind  Kind
	Label string
	// Lines is set when the graph is drawn as a line rather than markers.
	Lines bool
	X, Y  []float64
}

// Graphs evaluates the graphs selected in opts.
func Graphs(d Data, model func(float64) float64, opts *Options) ([]Graph, error) {
	o := opts.withDefaults()
	if err := d.check(); err != nil {
		return nil, err
	}
	all, err := build(d, model, o)
	if err != nil {
		return nil, err
	}
	out := make([]Graph, 0, len(all))
	for _, s := range all {
		label := o.Labels[s.kind]
		if label == "" {
			label = s.kind.String()
		}
		out = append(out, Graph{
			Kind:  s.kind,
			Label: label,
			Lines: o.LineStyles[s.kind] != "",
			X:     s.x,
			Y:     s.y,
		})
	}
	return out, nil
}
