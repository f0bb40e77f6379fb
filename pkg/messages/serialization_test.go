package messages

import (
	"encoding/json"
	"testing"

	"github.com/distributed-tricount/pkg/actor"
)

func TestMessageJSONRoundTrip(t *testing.T) {
	testPID := actor.NewPID("node-1", "partition-0")

	testCases := []struct {
		name    string
		message Message
	}{
		{"AssignPartition", &AssignPartition{Rank: 1, NumProcs: 4, Bases: []int64{0, 5, 10, 15, 20}, DataPath: "graph.el", BufferHint: 4096, FalsePos: 0.01}},
		{"EdgeRangeContribution", &EdgeRangeContribution{Rank: 1, Rows: []int64{3, 7}, Sender: testPID}},
		{"EdgeRangeTable", &EdgeRangeTable{Table: []int64{0, 1, 2, 3}}},
		{"VolumeReport", &VolumeReport{Rank: 1, ToPeer: []int64{0, 12, 4}, Sender: testPID}},
		{"VolumeCredit", &VolumeCredit{SlotWidth: 512, InPending: 19}},
		{"StartCounting", &StartCounting{}},
		{"DataMessage", &DataMessage{Sender: testPID, Bits: []byte("01010101"), K: 4}},
		{"BarrierEnter", &BarrierEnter{Rank: 2, Sender: testPID, Sent: 10, Received: 10}},
		{"BarrierDone", &BarrierDone{}},
		{"LocalCount", &LocalCount{Rank: 2, Count: 42, Sender: testPID}},
		{"FinalCount", &FinalCount{Triangles: 126}},
		{"Shutdown", &Shutdown{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.message)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			back := newZeroValue(tc.message)
			if err := json.Unmarshal(data, back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			roundTripped, err := json.Marshal(back)
			if err != nil {
				t.Fatalf("re-marshal: %v", err)
			}
			if string(roundTripped) != string(data) {
				t.Errorf("round trip mismatch: got %s, want %s", roundTripped, data)
			}
		})
	}
}

// newZeroValue returns a fresh pointer of the same concrete type as m, so
// the unmarshal target isn't aliased to the original.
func newZeroValue(m Message) Message {
	switch m.(type) {
	case *AssignPartition:
		return &AssignPartition{}
	case *EdgeRangeContribution:
		return &EdgeRangeContribution{}
	case *EdgeRangeTable:
		return &EdgeRangeTable{}
	case *VolumeReport:
		return &VolumeReport{}
	case *VolumeCredit:
		return &VolumeCredit{}
	case *StartCounting:
		return &StartCounting{}
	case *DataMessage:
		return &DataMessage{}
	case *BarrierEnter:
		return &BarrierEnter{}
	case *BarrierDone:
		return &BarrierDone{}
	case *LocalCount:
		return &LocalCount{}
	case *FinalCount:
		return &FinalCount{}
	case *Shutdown:
		return &Shutdown{}
	default:
		panic("newZeroValue: unhandled message type")
	}
}

func TestMessageTagsGroupByKind(t *testing.T) {
	setup := []Message{&AssignPartition{}, &EdgeRangeContribution{}, &EdgeRangeTable{}, &VolumeReport{}, &VolumeCredit{}, &StartCounting{}}
	for _, m := range setup {
		if m.Tag() != TagSetup {
			t.Errorf("%s: Tag() = %d, want TagSetup", m.Type(), m.Tag())
		}
	}

	if (&DataMessage{}).Tag() != TagData {
		t.Errorf("DataMessage.Tag() != TagData")
	}

	barrier := []Message{&BarrierEnter{}, &BarrierDone{}}
	for _, m := range barrier {
		if m.Tag() != TagBarrier {
			t.Errorf("%s: Tag() = %d, want TagBarrier", m.Type(), m.Tag())
		}
	}

	control := []Message{&LocalCount{}, &FinalCount{}, &Shutdown{}}
	for _, m := range control {
		if m.Tag() != TagControl {
			t.Errorf("%s: Tag() = %d, want TagControl", m.Type(), m.Tag())
		}
	}
}
