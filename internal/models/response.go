package models

import "console.busfleet.org/internal/clock"

// ResponseModel is the base envelope for all console API responses.
type ResponseModel struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Data        any    `json:"data,omitempty"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

// ResponseCurrentTime returns the envelope timestamp in Unix milliseconds.
func ResponseCurrentTime(c clock.Clock) int64 {
	if c == nil {
		c = clock.RealClock{}
	}
	return c.NowUnixMilli()
}

// NewOKResponse wraps data in the standard success envelope.
func NewOKResponse(data any, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        200,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        "OK",
		Version:     2,
	}
}
