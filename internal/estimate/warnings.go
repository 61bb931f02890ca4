package estimate

// WarningCode identifies a condition the engine recovered from
type WarningCode string

const (
	// WarningInvalidProfitMargin means the margin was >= 100% (or not a number)
	// and selling prices fell back to cost
	WarningInvalidProfitMargin WarningCode = "INVALID_PROFIT_MARGIN"
	// WarningNegativeInputClamped means a negative or non-finite input was treated as zero
	WarningNegativeInputClamped WarningCode = "NEGATIVE_INPUT_CLAMPED"
	// WarningValueOverflow means a result exceeded the float64 range and was
	// capped at the largest finite value
	WarningValueOverflow WarningCode = "VALUE_OVERFLOW"
)

// Warning is a non-fatal condition attached to a summary
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// warningSet collects warnings once per code, keeping first-seen order
type warningSet struct {
	list []Warning
}

func (s *warningSet) add(code WarningCode, message string) {
	for _, w := range s.list {
		if w.Code == code {
			return
		}
	}
	s.list = append(s.list, Warning{Code: code, Message: message})
}

func (s *warningSet) merge(ws []Warning) {
	for _, w := range ws {
		s.add(w.Code, w.Message)
	}
}

func (s *warningSet) result() []Warning {
	if len(s.list) == 0 {
		return nil
	}
	out := make([]Warning, len(s.list))
	copy(out, s.list)
	return out
}

// HasWarning reports whether code is present in ws
func HasWarning(ws []Warning, code WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}
