package domain

// TxPerBlockSeries is a chart-ready series of transaction counts per block.
type TxPerBlockSeries struct {
	Labels []string `json:"labels"`
	Data   []uint64 `json:"data"`
}

// DirectionCounts is the incoming/outgoing aggregate for the activity chart.
type DirectionCounts struct {
	Incoming int `json:"incoming"`
	Outgoing int `json:"outgoing"`
}

// ChartData bundles everything the presentation layer renders as charts.
type ChartData struct {
	TxPerBlock TxPerBlockSeries `json:"tx_per_block"`
	Directions DirectionCounts  `json:"direction_counts"`
}
