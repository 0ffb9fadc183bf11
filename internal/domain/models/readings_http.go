package models

// Requests for the dashboard HTTP endpoints. Defined in domain for
// consistency and reuse.

type ReadingsRequest struct {
	Device string `query:"device" json:"device" validate:"required"`
	N      int    `query:"n" json:"n" default:"120" validate:"gte=1,lte=5000"`
}

type HistoryRequest struct {
	Device         string  `query:"device" json:"device" validate:"required"`
	N              int     `query:"n" json:"n" default:"120" validate:"gte=1,lte=2000"`
	Method         string  `query:"method" json:"method" default:"exponential" validate:"oneof=exponential moving_average"`
	HorizonMinutes float64 `query:"horizon_minutes" json:"horizon_minutes" default:"7.5" validate:"gte=0,lte=120"`
}

type ForecastRequest struct {
	Device         string  `query:"device" json:"device" validate:"required"`
	Method         string  `query:"method" json:"method" default:"exponential" validate:"oneof=exponential moving_average"`
	HorizonMinutes float64 `query:"horizon_minutes" json:"horizon_minutes" default:"7.5" validate:"gte=0,lte=120"`
}

type AlertsRequest struct {
	Device string `query:"device" json:"device" validate:"required"`
	N      int    `query:"n" json:"n" default:"50" validate:"gte=1,lte=500"`
}

type ExportRequest struct {
	Device string `query:"device" json:"device" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=100000"`
}

type UpdateThresholdsRequest struct {
	TempHigh            float64 `json:"temp_high" validate:"required,gt=-50,lt=100"`
	TempLow             float64 `json:"temp_low" validate:"required,gt=-50,lt=100"`
	HumidityHigh        float64 `json:"humidity_high" validate:"required,gt=0,lte=100"`
	HumidityLow         float64 `json:"humidity_low" validate:"required,gte=0,lt=100"`
	PredictionDeviation float64 `json:"prediction_deviation" default:"2" validate:"gte=0"`
}

// ForecastResponse is the payload served by GET /api/forecast.
type ForecastResponse struct {
	Device               string  `json:"device"`
	Method               string  `json:"method"`
	HorizonMinutes       float64 `json:"horizon_minutes"`
	CurrentTemperature   float64 `json:"current_temperature"`
	PredictedTemperature float64 `json:"predicted_temperature"`
}
