package source

import (
	"context"
	"errors"
	"testing"

	"github.com/propflow/commshub/internal/record"
)

func fixed(name string, recs ...record.RawRecord) Adapter {
	return Func{
		AdapterName: name,
		FetchFunc: func(context.Context, Window) ([]record.RawRecord, error) {
			return recs, nil
		},
	}
}

func failing(name string, err error) Adapter {
	return Func{
		AdapterName: name,
		FetchFunc: func(context.Context, Window) ([]record.RawRecord, error) {
			return nil, err
		},
	}
}

func TestFetchAllJoinsInAdapterOrder(t *testing.T) {
	res := FetchAll(context.Background(), []Adapter{
		fixed("sms", record.RawRecord{ID: "s1"}, record.RawRecord{ID: "s2"}),
		fixed("calls", record.RawRecord{ID: "c1"}),
	}, Window{})

	if len(res.Degraded) != 0 {
		t.Fatalf("unexpected degradation: %v", res.Degraded)
	}
	want := []string{"s1", "s2", "c1"}
	if len(res.Records) != len(want) {
		t.Fatalf("got %d records, want %d", len(res.Records), len(want))
	}
	for i, id := range want {
		if res.Records[i].ID != id {
			t.Errorf("record %d = %q, want %q", i, res.Records[i].ID, id)
		}
	}
}

func TestFetchAllDegradesGracefully(t *testing.T) {
	boom := errors.New("upstream 503")
	res := FetchAll(context.Background(), []Adapter{
		fixed("sms", record.RawRecord{ID: "s1"}),
		failing("email", boom),
	}, Window{})

	if len(res.Records) != 1 || res.Records[0].ID != "s1" {
		t.Errorf("surviving records = %+v", res.Records)
	}
	if len(res.Degraded) != 1 {
		t.Fatalf("degraded = %v", res.Degraded)
	}
	fe := res.Degraded[0]
	if fe.Source != "email" || !errors.Is(fe, boom) {
		t.Errorf("fetch error = %+v", fe)
	}
}

func TestFetchAllTotalFailure(t *testing.T) {
	res := FetchAll(context.Background(), []Adapter{
		failing("sms", errors.New("down")),
		failing("calls", errors.New("down")),
	}, Window{})
	if len(res.Records) != 0 || len(res.Degraded) != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestWindowContains(t *testing.T) {
	tests := []struct {
		name string
		w    Window
		ts   int64
		want bool
	}{
		{"unbounded", Window{}, 123, true},
		{"inside", Window{Start: 100, End: 200}, 150, true},
		{"before start", Window{Start: 100, End: 200}, 99, false},
		{"after end", Window{Start: 100, End: 200}, 201, false},
		{"open ended", Window{Start: 100}, 1_000_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Contains(tt.ts); got != tt.want {
				t.Errorf("Contains(%d) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}
