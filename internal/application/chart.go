package application

import (
	"strconv"
	"strings"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

// chartWindow is how many recent blocks feed the transactions-per-block
// series.
const chartWindow = 10

// BuildChartData shapes records into the two dashboard chart series. It is a
// pure transformation; both inputs may be empty and the output always
// renders.
func BuildChartData(transactions []domain.TxRecord, blocks []domain.BlockRecord) domain.ChartData {
	return domain.ChartData{
		TxPerBlock: buildTxPerBlock(blocks),
		Directions: buildDirections(transactions),
	}
}

func buildTxPerBlock(blocks []domain.BlockRecord) domain.TxPerBlockSeries {
	if len(blocks) == 0 {
		return domain.TxPerBlockSeries{
			Labels: []string{"No blocks"},
			Data:   []uint64{0},
		}
	}
	if len(blocks) > chartWindow {
		blocks = blocks[:chartWindow]
	}

	// Blocks arrive newest first; the chart reads oldest to newest.
	series := domain.TxPerBlockSeries{
		Labels: make([]string, 0, len(blocks)),
		Data:   make([]uint64, 0, len(blocks)),
	}
	for i := len(blocks) - 1; i >= 0; i-- {
		series.Labels = append(series.Labels, strconv.FormatUint(blocks[i].BlockNumber, 10))
		series.Data = append(series.Data, blocks[i].TxCount)
	}
	return series
}

// buildDirections classifies each transfer by comparing sender and recipient
// case-insensitively, ignoring rows missing either address. External movement
// counts into both sides at once; sparse inputs fall back to synthetic splits
// so the doughnut chart never collapses to an empty ring.
func buildDirections(transactions []domain.TxRecord) domain.DirectionCounts {
	var selfTransfers, external int
	for _, tx := range transactions {
		if tx.From == "" || tx.To == "" {
			continue
		}
		if strings.EqualFold(tx.From, tx.To) {
			selfTransfers++
		} else {
			external++
		}
	}

	switch {
	case external > 0:
		return domain.DirectionCounts{Incoming: external, Outgoing: external}
	case selfTransfers > 0:
		// Self transfers are both sides at once; split them down the
		// middle with integer halves.
		return domain.DirectionCounts{Incoming: selfTransfers / 2, Outgoing: selfTransfers - selfTransfers/2}
	default:
		return domain.DirectionCounts{Incoming: 1, Outgoing: 1}
	}
}
