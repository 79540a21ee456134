package predict

// minMaxScaler maps each feature column into [0,1] using the min and max seen in Fit.
type minMaxScaler struct {
	min, max []float64
}

func fitMinMax(rows [][]float64) *minMaxScaler {
	if len(rows) == 0 {
		return &minMaxScaler{}
	}
	n := len(rows[0])
	s := &minMaxScaler{min: make([]float64, n), max: make([]float64, n)}
	copy(s.min, rows[0])
	copy(s.max, rows[0])
	for _, r := range rows[1:] {
		for j, v := range r {
			if v < s.min[j] {
				s.min[j] = v
			}
			if v > s.max[j] {
				s.max[j] = v
			}
		}
	}
	return s
}

func (s *minMaxScaler) transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(r))
		for j, v := range r {
			span := s.max[j] - s.min[j]
			if span == 0 {
				continue
			}
			out[i][j] = (v - s.min[j]) / span
		}
	}
	return out
}

func (s *minMaxScaler) inverse(col int, v float64) float64 {
	return v*(s.max[col]-s.min[col]) + s.min[col]
}
