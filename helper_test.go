package rentroll

import (
	"github.com/etnz/rentroll/date"
)

// D parses a date, the empty string being the zero date.
func D(s string) date.Date { return date.MustParse(s) }

func USD(v float64) Money { return M(v, "USD") }

// amend returns an amendment of lease (property, tenant) with an area of 1000.
func amend(property, tenant, id string, seq int, status Status, typ AmendmentType, start, end string) Amendment {
	return Amendment{
		Key:      LeaseKey{Property: property, Tenant: tenant},
		ID:       id,
		Sequence: seq,
		Status:   status,
		Type:     typ,
		Start:    D(start),
		End:      D(end),
		Area:     A(1000),
	}
}

// rent returns a rent charge line of amendment id.
func rent(id string, amount float64, f Frequency, from, to string) Charge {
	return Charge{AmendmentID: id, Code: "RNT", Amount: USD(amount), Frequency: f, From: D(from), To: D(to)}
}

// chargesOf returns a ChargePredicate over charges.
func chargesOf(charges ...Charge) ChargePredicate {
	index := make(map[string][]Charge)
	for _, c := range charges {
		index[c.AmendmentID] = append(index[c.AmendmentID], c)
	}
	return hasRentOn(index, DefaultClassification())
}
