package domain

// AlgorithmID identifies one of the positioning algorithms.
type AlgorithmID string

const (
	AlgorithmProximity        AlgorithmID = "PROXIMITY"
	AlgorithmRSSIRatio        AlgorithmID = "RSSI_RATIO"
	AlgorithmWeightedCentroid AlgorithmID = "WEIGHTED_CENTROID"
	AlgorithmLogDistance      AlgorithmID = "LOG_DISTANCE"
	AlgorithmTrilateration    AlgorithmID = "TRILATERATION"
	AlgorithmMaxLikelihood    AlgorithmID = "MAX_LIKELIHOOD"
)

// AllAlgorithms lists every algorithm in a stable order. Selection must
// be deterministic, so iteration always follows this slice rather than
// map order.
var AllAlgorithms = []AlgorithmID{
	AlgorithmProximity,
	AlgorithmRSSIRatio,
	AlgorithmWeightedCentroid,
	AlgorithmLogDistance,
	AlgorithmTrilateration,
	AlgorithmMaxLikelihood,
}

// APCountFactor buckets the number of distinct observed APs.
type APCountFactor string

const (
	CountSingle   APCountFactor = "SINGLE"
	CountTwo      APCountFactor = "TWO"
	CountThree    APCountFactor = "THREE"
	CountFourPlus APCountFactor = "FOUR_PLUS"
)

// SignalQuality buckets the mean RSSI of a scan set.
type SignalQuality string

const (
	SignalStrong   SignalQuality = "STRONG"
	SignalMedium   SignalQuality = "MEDIUM"
	SignalWeak     SignalQuality = "WEAK"
	SignalVeryWeak SignalQuality = "VERY_WEAK"
)

// SignalDistribution buckets the RSSI standard deviation.
type SignalDistribution string

const (
	DistributionUniform  SignalDistribution = "UNIFORM"
	DistributionMixed    SignalDistribution = "MIXED"
	DistributionOutliers SignalDistribution = "OUTLIERS"
)

// GeometricQuality buckets the GDOP of the AP constellation.
type GeometricQuality string

const (
	GeometryExcellent GeometricQuality = "EXCELLENT"
	GeometryGood      GeometricQuality = "GOOD"
	GeometryFair      GeometricQuality = "FAIR"
	GeometryPoor      GeometricQuality = "POOR"
	GeometryCollinear GeometricQuality = "COLLINEAR"
)

// SelectionContext characterises one positioning request. It is derived
// once per request and read-only thereafter.
type SelectionContext struct {
	APCountFactor      APCountFactor      `json:"apCountFactor"`
	SignalQuality      SignalQuality      `json:"signalQuality"`
	SignalDistribution SignalDistribution `json:"signalDistribution"`
	GeometricQuality   GeometricQuality   `json:"geometricQuality"`
}

// AlgorithmWeight is the selector's verdict for a single algorithm.
type AlgorithmWeight struct {
	Algorithm AlgorithmID `json:"algorithm"`
	Selected  bool        `json:"selected"`
	Weight    float64     `json:"weight"`
	Reasons   []string    `json:"reasons"`
}

// AlgorithmSelection is the ordered outcome of the three selection
// phases. Finalists holds the selected entries sorted by descending
// weight; Evaluations holds every algorithm's verdict for reporting.
type AlgorithmSelection struct {
	Finalists   []AlgorithmWeight `json:"finalists"`
	Evaluations []AlgorithmWeight `json:"evaluations"`
}
