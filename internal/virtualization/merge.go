package virtualization

import "stream-accounting/internal/domain"

// Merge folds transfers into the stream buckets they settle.
//
// A transfer matches a stream when token id, chain id, sender and receiver are equal
// (addresses compared case-insensitively). Streams are scanned in input order and the
// first bucket whose [StartTime, EndTime] contains the transfer timestamp receives the
// transfer's signed amount and fiat amount; the stream's TotalAmountStreamed grows by the
// unsigned transferred value. Transfers that match nothing are returned unchanged.
//
// Merge works on deep copies: neither input slice nor anything it references is modified.
func Merge(streams, transfers []domain.StreamPeriodResult) (merged, unmerged []domain.StreamPeriodResult) {
	merged = make([]domain.StreamPeriodResult, len(streams))
	for i := range streams {
		merged[i] = streams[i].Clone()
	}

	for i := range transfers {
		if !mergeTransfer(merged, &transfers[i]) {
			unmerged = append(unmerged, transfers[i].Clone())
		}
	}
	return merged, unmerged
}

func mergeTransfer(streams []domain.StreamPeriodResult, t *domain.StreamPeriodResult) bool {
	if len(t.VirtualPeriods) == 0 {
		return false
	}
	tvp := t.VirtualPeriods[0]

	for i := range streams {
		s := &streams[i]
		if !sameParties(s, t) {
			continue
		}

		for j := range s.VirtualPeriods {
			vp := &s.VirtualPeriods[j]
			if tvp.StartTime < vp.StartTime || tvp.StartTime > vp.EndTime {
				continue
			}

			vp.Amount = vp.Amount.Add(tvp.Amount)
			vp.AmountFiat = vp.AmountFiat.Add(tvp.AmountFiat)
			s.TotalAmountStreamed = s.TotalAmountStreamed.Add(t.TotalAmountStreamed.Abs())
			return true
		}
	}
	return false
}

func sameParties(s, t *domain.StreamPeriodResult) bool {
	return s.ChainID == t.ChainID &&
		domain.NormalizeAddress(s.Token.ID) == domain.NormalizeAddress(t.Token.ID) &&
		domain.NormalizeAddress(s.Sender) == domain.NormalizeAddress(t.Sender) &&
		domain.NormalizeAddress(s.Receiver) == domain.NormalizeAddress(t.Receiver)
}
