package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"stream-accounting/internal/domain"
)

var csvHeader = []string{
	"record_id", "kind", "chain_id", "token", "symbol", "sender", "receiver", "direction",
	"start_time", "end_time", "start_date", "end_date", "amount", "amount_fiat",
}

// RenderCSV renders one row per virtual period.
func RenderCSV(addresses []string, records []domain.StreamPeriodResult) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	set := domain.NewAddressSet(addresses...)
	for i := range records {
		rec := &records[i]
		direction := Direction(set, rec)
		for _, vp := range rec.VirtualPeriods {
			row := []string{
				rec.ID,
				rec.Kind.String(),
				strconv.FormatInt(rec.ChainID, 10),
				rec.Token.ID,
				rec.Token.Symbol,
				rec.Sender,
				rec.Receiver,
				direction,
				strconv.FormatInt(vp.StartTime, 10),
				strconv.FormatInt(vp.EndTime, 10),
				formatDate(vp.StartTime),
				formatDate(vp.EndTime),
				vp.Amount.String(),
				vp.AmountFiat.StringFixed(domain.FiatDecimals),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
