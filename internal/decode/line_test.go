package decode

// row builds a fixed-width line with each value right-aligned in its column.
// Missing trailing values leave the line short.
func row(values ...string) string {
	var b []byte
	for i, v := range values {
		start, end := Field(i).Bounds()
		for len(b) < end {
			b = append(b, ' ')
		}
		if len(v) > end-start {
			panic("value too wide for " + Field(i).String())
		}
		copy(b[end-len(v):end], v)
	}
	return string(b)
}
