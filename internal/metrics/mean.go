package metrics

type Mean struct {
	name    string
	sum     float64
	samples int
}

func NewMean() *Mean {
	return &Mean{
		name: "mean",
	}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(step int, n float64) {
	m.sum += n
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}
