package virtualization

import "stream-accounting/internal/domain"

// NormalizeTransfer reshapes a transfer into a record with a single degenerate virtual
// period at the transfer timestamp.
func NormalizeTransfer(addresses domain.AddressSet, t *domain.TransferEvent, prices []domain.TimespanPrice) domain.StreamPeriodResult {
	outgoing := addresses.Contains(t.From)

	r := TransferToResult(t)
	r.VirtualPeriods = []domain.VirtualPeriod{{
		StartTime:  t.Timestamp,
		EndTime:    t.Timestamp,
		Amount:     directed(toHuman(t.Value, t.Token.Decimals), outgoing),
		AmountFiat: directed(ValueTransfer(t.Value, t.Token.Decimals, t.Timestamp, prices), outgoing),
	}}
	return r
}
