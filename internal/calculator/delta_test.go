package calculator

import (
	"testing"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
)

func participants(ids ...int64) []Participant {
	ps := make([]Participant, len(ids))
	for i, id := range ids {
		ps[i] = Participant{AccountID: id}
	}
	return ps
}

func sumDeltas(deltas map[int64]AccountDelta) money.Value {
	var sum money.Value
	for _, d := range deltas {
		sum += d.Delta
	}
	return sum
}

func TestDeltas(t *testing.T) {
	tests := []struct {
		name      string
		senders   []Participant
		receivers []Participant
		amount    money.Value
		wantErr   bool
		want      map[int64]money.Value
	}{
		{
			name:      "one to one",
			senders:   participants(1),
			receivers: participants(2),
			amount:    1250,
			want:      map[int64]money.Value{1: -1250, 2: 1250},
		},
		{
			name:      "three senders share 100 with remainder to the first",
			senders:   participants(10, 11, 12),
			receivers: participants(20),
			amount:    100,
			want:      map[int64]money.Value{10: -34, 11: -33, 12: -33, 20: 100},
		},
		{
			name:      "two cents remainder hits first two receivers",
			senders:   participants(1),
			receivers: participants(5, 6, 7),
			amount:    200,
			want:      map[int64]money.Value{1: -200, 5: 67, 6: 67, 7: 66},
		},
		{
			name:      "amount smaller than sender count",
			senders:   participants(1, 2, 3),
			receivers: participants(4),
			amount:    2,
			want:      map[int64]money.Value{1: -1, 2: -1, 3: 0, 4: 2},
		},
		{
			name:      "zero amount yields zero deltas",
			senders:   participants(1, 2),
			receivers: participants(3),
			amount:    0,
			want:      map[int64]money.Value{1: 0, 2: 0, 3: 0},
		},
		{
			name:      "account on both sides accumulates",
			senders:   participants(1, 2),
			receivers: participants(1),
			amount:    100,
			want:      map[int64]money.Value{1: 50, 2: -50},
		},
		{
			name:      "negative amount rejected",
			senders:   participants(1),
			receivers: participants(2),
			amount:    -1,
			wantErr:   true,
		},
		{
			name:      "empty sender side rejected",
			senders:   nil,
			receivers: participants(2),
			amount:    100,
			wantErr:   true,
		},
		{
			name:      "empty receiver side rejected",
			senders:   participants(1),
			receivers: nil,
			amount:    100,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas, err := Deltas(tt.senders, tt.receivers, tt.amount)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Deltas() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := sumDeltas(deltas); got != 0 {
				t.Errorf("deltas sum to %d, want 0", got)
			}
			if len(deltas) != len(tt.want) {
				t.Fatalf("got %d deltas, want %d", len(deltas), len(tt.want))
			}
			for id, want := range tt.want {
				if got := deltas[id].Delta; got != want {
					t.Errorf("account %d delta = %d, want %d", id, got, want)
				}
			}
		})
	}
}

func TestDeltasConservation(t *testing.T) {
	// Conservation must hold for any amount and any side sizes.
	for _, amount := range []money.Value{0, 1, 2, 99, 100, 101, 12345, 999999} {
		for senders := 1; senders <= 7; senders++ {
			for receivers := 1; receivers <= 7; receivers++ {
				s := make([]Participant, senders)
				for i := range s {
					s[i] = Participant{AccountID: int64(i + 1)}
				}
				r := make([]Participant, receivers)
				for i := range r {
					r[i] = Participant{AccountID: int64(100 + i)}
				}
				deltas, err := Deltas(s, r, amount)
				if err != nil {
					t.Fatalf("Deltas(%d senders, %d receivers, %d): %v", senders, receivers, amount, err)
				}
				if sum := sumDeltas(deltas); sum != 0 {
					t.Errorf("amount %d, %d senders, %d receivers: sum = %d", amount, senders, receivers, sum)
				}
				// Shares stay within one cent of the even split.
				base := amount / money.Value(senders)
				for i := 0; i < senders; i++ {
					d := -deltas[int64(i+1)].Delta
					if d != base && d != base+1 {
						t.Errorf("sender share %d outside [%d, %d]", d, base, base+1)
					}
				}
			}
		}
	}
}

func TestDeltasDeterministic(t *testing.T) {
	senders := participants(3, 1, 2) // caller-defined order, not sorted
	receivers := participants(9)

	first, err := Deltas(senders, receivers, 100)
	if err != nil {
		t.Fatal(err)
	}
	// The extra cent goes to the first participant in iteration order.
	if first[3].Delta != -34 {
		t.Errorf("first sender delta = %d, want -34", first[3].Delta)
	}

	for i := 0; i < 10; i++ {
		again, err := Deltas(senders, receivers, 100)
		if err != nil {
			t.Fatal(err)
		}
		for id, d := range first {
			if again[id].Delta != d.Delta {
				t.Fatalf("run %d: account %d delta changed from %d to %d", i, id, d.Delta, again[id].Delta)
			}
		}
	}
}

func TestReverse(t *testing.T) {
	senders := []Participant{{AccountID: 1, Balance: -67}}
	receivers := []Participant{{AccountID: 2, Balance: 34}, {AccountID: 3, Balance: 33}}

	forward, err := Deltas(receivers, senders, 67)
	if err != nil {
		t.Fatal(err)
	}
	reverse, err := Reverse(receivers, senders, 67)
	if err != nil {
		t.Fatal(err)
	}

	for id, f := range forward {
		if r := reverse[id]; r.Delta != -f.Delta {
			t.Errorf("account %d: reverse delta = %d, want %d", id, r.Delta, -f.Delta)
		}
	}
	if sum := sumDeltas(reverse); sum != 0 {
		t.Errorf("reverse deltas sum to %d, want 0", sum)
	}
}
