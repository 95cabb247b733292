package domain

// AccessPointUsage describes how a looked-up AP participated in the
// calculation.
type AccessPointUsage struct {
	BSSID    string    `json:"bssid"`
	Location *Position `json:"location,omitempty"`
	Status   APStatus  `json:"status"`
	Usage    string    `json:"usage"` // "used", "filtered", "unknown"
}

// StatusCount pairs an AP status with its occurrence count.
type StatusCount struct {
	Status APStatus `json:"status"`
	Count  int      `json:"count"`
}

// AccessPointSummary aggregates the lookup outcome for one request.
type AccessPointSummary struct {
	Total        int           `json:"total"`
	Used         int           `json:"used"`
	StatusCounts []StatusCount `json:"statusCounts"`
}

// AlgorithmOutcome records one finalist's computation result.
type AlgorithmOutcome struct {
	Algorithm AlgorithmID `json:"algorithm"`
	Weight    float64     `json:"weight"`
	Succeeded bool        `json:"succeeded"`
	Reason    string      `json:"reason,omitempty"` // failure reason when !Succeeded
	Position  *Position   `json:"position,omitempty"`
	ElapsedMs int64       `json:"elapsedMs"`
}

// CalculationInfo is the structured trace emitted alongside a position
// response.
type CalculationInfo struct {
	RequestID          string             `json:"requestId"`
	AccessPoints       []AccessPointUsage `json:"accessPoints"`
	AccessPointSummary AccessPointSummary `json:"accessPointSummary"`
	SelectionContext   SelectionContext   `json:"selectionContext"`
	AlgorithmSelection []AlgorithmWeight  `json:"algorithmSelection"`
	Outcomes           []AlgorithmOutcome `json:"algorithmOutcomes"`
}
