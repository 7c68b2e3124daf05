package extract

// Extract recovers a ParameterMap from source text rendered, and possibly
// hand-edited, from template. Matchers run independently in Block order
// against the whole source: a Param with no match is omitted, a Loop with
// no matches yields an empty sequence, and the first assignment to a name
// wins. Errors come only from template analysis or matcher compilation,
// never from missing values.
func Extract(template, source string, opts Options) (ParameterMap, error) {
	blocks, err := Analyze(template, opts)
	if err != nil {
		return nil, err
	}

	params := make(ParameterMap, len(blocks))
	for _, block := range blocks {
		m, err := Compile(block)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		name, value, ok := m.Apply(source)
		if !ok {
			continue
		}
		if _, exists := params[name]; exists {
			continue
		}
		params[name] = value
	}
	return params, nil
}
