package normalize

import (
	"testing"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

func TestHexToUint64(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0x0", 0},
		{"0x10", 16},
		{"0xDEAD", 0xdead},
		{"1a", 26},
		{"", 0},
		{"0x", 0},
		{"not-hex", 0},
		{"  0xff  ", 255},
	}
	for _, tc := range cases {
		if got := HexToUint64(tc.in); got != tc.want {
			t.Errorf("HexToUint64(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseBigInt(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0x0", "0"},
		{"0xde0b6b3a7640000", "1000000000000000000"},
		{"12345", "12345"},
		{"-5", "0"},
		{"", "0"},
		{"garbage", "0"},
	}
	for _, tc := range cases {
		if got := ParseBigInt(tc.in).String(); got != tc.want {
			t.Errorf("ParseBigInt(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestBlockTimestamp(t *testing.T) {
	got := BlockTimestamp("0x65f2a880")
	want := time.Unix(0x65f2a880, 0).UTC()
	if !got.Equal(want) {
		t.Errorf("BlockTimestamp = %v, want %v", got, want)
	}
	if loc := got.Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}

func TestBlockTimestampUnknown(t *testing.T) {
	for _, in := range []string{"", "0x", "zzz", "0xzzz"} {
		if got := BlockTimestamp(in); !got.IsZero() {
			t.Errorf("BlockTimestamp(%q) = %v, want zero time", in, got)
		}
	}
}

func TestClassifyDirection(t *testing.T) {
	ref := "0x002624Fa55DFf0ca53aF9166B4d44c16a294C4e0"
	cases := []struct {
		name string
		from string
		to   string
		want domain.Direction
	}{
		{"self transfer case-insensitive", "0xAAA", "0xaaa", domain.DirectionSelfTransfer},
		{"incoming", "0xBBB", ref, domain.DirectionIncoming},
		{"incoming mixed case", "0xBBB", "0x002624FA55DFF0CA53AF9166B4D44C16A294C4E0", domain.DirectionIncoming},
		{"outgoing", ref, "0xCCC", domain.DirectionOutgoing},
		{"external", "0xAAA", "0xBBB", domain.DirectionExternal},
		{"self beats reference match", ref, ref, domain.DirectionSelfTransfer},
	}
	for _, tc := range cases {
		if got := ClassifyDirection(tc.from, tc.to, ref); got != tc.want {
			t.Errorf("%s: ClassifyDirection(%q, %q) = %q, want %q", tc.name, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestClassifyDirectionNoReference(t *testing.T) {
	if got := ClassifyDirection("0xAAA", "0xBBB", ""); got != domain.DirectionExternal {
		t.Errorf("expected external without a reference wallet, got %q", got)
	}
}
