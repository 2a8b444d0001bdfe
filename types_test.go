package rentroll

import (
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1250", "1250", false},
		{"1,250.00", "1250", false},
		{"$ 3,000", "3000", false},
		{"(120.50)", "-120.5", false},
		{"", "0", false},
		{"-", "0", false},
		{"12 apples", "", true},
	}
	for _, tc := range tests {
		got, err := ParseMoney(tc.in, "USD")
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseMoney(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if tc.wantErr {
			continue
		}
		if got.Decimal().String() != tc.want || got.Currency() != "USD" {
			t.Errorf("ParseMoney(%q) = %v %s, want %s", tc.in, got.Decimal(), got.Currency(), tc.want)
		}
	}
}

func TestParseArea(t *testing.T) {
	got, err := ParseArea("12,500")
	if err != nil || !got.Equal(A(12500)) {
		t.Errorf("ParseArea(12,500) = %v, %v", got, err)
	}
	if _, err := ParseArea("big"); err == nil {
		t.Error("ParseArea(big) succeeded")
	}
	if got := A(1500).Ratio(A(2000)); !got.Equal(75) {
		t.Errorf("Ratio = %v, want 75%%", got)
	}
	if got := A(1500).Ratio(Area{}); got != 0 {
		t.Errorf("Ratio over no area = %v, want 0", got)
	}
}

func TestMoney(t *testing.T) {
	if got := USD(1234.5).String(); got != "$1,234.50" {
		t.Errorf("String() = %q", got)
	}
	// the weak currency adopts the other operand's.
	if got := M(10, "").Add(USD(5)); got.Currency() != "USD" || !got.Equal(USD(15)) {
		t.Errorf("weak Add = %v %s", got, got.Currency())
	}
	defer func() {
		if recover() == nil {
			t.Error("adding USD and EUR did not panic")
		}
	}()
	USD(1).Add(M(1, "EUR"))
}

func TestPercent(t *testing.T) {
	if got := Percent(12.345).String(); got != "12.35%" {
		t.Errorf("String() = %q", got)
	}
	if got := Percent(0).SignedString(); got != "-" {
		t.Errorf("SignedString(0) = %q", got)
	}
	if got := Percent(-1.5).SignedString(); got != "-1.50%" {
		t.Errorf("SignedString(-1.5) = %q", got)
	}
	b, _ := Percent(33.333333).MarshalJSON()
	if string(b) != "33.33" {
		t.Errorf("MarshalJSON() = %s", b)
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"Activated":  Activated,
		"activated":  Activated,
		"in process": InProcess,
		"IN_PROCESS": InProcess,
		"Pending":    "Pending",
	}
	for in, want := range tests {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAmendmentType(t *testing.T) {
	tests := map[string]AmendmentType{
		"Original Lease":           OriginalLease,
		"new":                      OriginalLease,
		"renewal":                  Renewal,
		"Proposal in Deal Manager": ProposalInDM,
		"proposal-in-dm":           ProposalInDM,
		"HOLDOVER":                 Holdover,
		" Sublease ":               "Sublease",
	}
	for in, want := range tests {
		if got := ParseAmendmentType(in); got != want {
			t.Errorf("ParseAmendmentType(%q) = %q, want %q", in, got, want)
		}
	}
}
