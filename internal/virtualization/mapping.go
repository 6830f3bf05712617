package virtualization

import "stream-accounting/internal/domain"

// StreamToResult maps a raw stream period to an output record without virtual periods.
func StreamToResult(p *domain.StreamPeriod) domain.StreamPeriodResult {
	r := domain.StreamPeriodResult{
		ID:                   p.ID,
		Kind:                 domain.KindStream,
		FlowRate:             p.FlowRate,
		Token:                p.Token,
		ChainID:              p.ChainID,
		Sender:               p.Sender,
		Receiver:             p.Receiver,
		StartedAtTimestamp:   p.StartedAtTimestamp,
		StartedAtBlockNumber: p.StartedAtBlockNumber,
		StartedAtEvent:       p.StartedAtTxHash,
		TotalAmountStreamed:  p.TotalAmountStreamed,
	}
	if p.StoppedAtTimestamp != nil {
		ts := *p.StoppedAtTimestamp
		r.StoppedAtTimestamp = &ts
	}
	if p.StoppedAtBlockNumber != nil {
		block := *p.StoppedAtBlockNumber
		r.StoppedAtBlockNumber = &block
	}
	if p.StoppedAtTxHash != nil {
		hash := *p.StoppedAtTxHash
		r.StoppedAtEvent = &hash
	}
	return r
}

// TransferToResult maps a transfer to an output record that starts and stops at the
// transfer timestamp. The flow rate and total amount both carry the transferred value.
func TransferToResult(t *domain.TransferEvent) domain.StreamPeriodResult {
	ts, block, hash := t.Timestamp, t.BlockNumber, t.TransactionHash
	return domain.StreamPeriodResult{
		ID:                   t.ID,
		Kind:                 domain.KindTransfer,
		FlowRate:             t.Value,
		Token:                t.Token,
		ChainID:              t.ChainID,
		Sender:               t.From,
		Receiver:             t.To,
		StartedAtTimestamp:   t.Timestamp,
		StartedAtBlockNumber: t.BlockNumber,
		StartedAtEvent:       t.TransactionHash,
		StoppedAtTimestamp:   &ts,
		StoppedAtBlockNumber: &block,
		StoppedAtEvent:       &hash,
		TotalAmountStreamed:  t.Value,
	}
}
