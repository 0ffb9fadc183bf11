package repository

// Method selects the forecasting model.
type Method string

const (
	MethodExponential   Method = "exponential"
	MethodMovingAverage Method = "moving_average"
)

// IsValidMethod returns true if m is a supported forecasting method.
func IsValidMethod(m Method) bool {
	switch m {
	case MethodExponential, MethodMovingAverage:
		return true
	default:
		return false
	}
}

// DefaultMethod returns the default forecasting method.
func DefaultMethod() Method { return MethodExponential }

// NormalizeMethod converts a raw string to a valid method (or default).
func NormalizeMethod(s string) Method {
	if s == "" {
		return DefaultMethod()
	}
	m := Method(s)
	if IsValidMethod(m) {
		return m
	}
	return DefaultMethod()
}
