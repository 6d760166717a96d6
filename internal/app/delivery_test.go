package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/inkwell/internal/core/classify"
	"github.com/example/inkwell/internal/core/mission"
	"github.com/example/inkwell/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockTransport implements secondary.Transport for testing.
type mockTransport struct {
	kind      secondary.TransportKind
	openErr   error
	writeErrs []error // consumed one per Write; nil entries succeed
	cutErr    error

	opens  int
	writes []string
	cuts   int
	closes int
}

func (m *mockTransport) Kind() secondary.TransportKind { return m.kind }
func (m *mockTransport) Describe() string              { return "mock (" + string(m.kind) + ")" }

func (m *mockTransport) Open() error {
	m.opens++
	return m.openErr
}

func (m *mockTransport) Write(content string) error {
	m.writes = append(m.writes, content)
	if len(m.writeErrs) > 0 {
		err := m.writeErrs[0]
		m.writeErrs = m.writeErrs[1:]
		return err
	}
	return nil
}

func (m *mockTransport) Cut() error {
	m.cuts++
	return m.cutErr
}

func (m *mockTransport) Close() error {
	m.closes++
	return nil
}

// mockTrigger counts firings.
type mockTrigger struct {
	fires int
}

func (m *mockTrigger) Fire() bool {
	m.fires++
	return true
}

func testBriefing() *mission.Briefing {
	return &mission.Briefing{
		MissionID:      "MI-A1B2C3D4",
		Title:          "Budget review",
		Urgency:        mission.UrgencyHigh,
		ActionRequired: "Send the Q3 numbers to finance",
		Context:        "Board meeting Thursday",
	}
}

func testEngine(transport secondary.Transport, trigger Trigger) (*DeliveryEngine, *[]time.Duration) {
	e := NewDeliveryEngine(transport, trigger, nil, "Agent K", zap.NewNop())
	var slept []time.Duration
	e.sleep = func(d time.Duration) { slept = append(slept, d) }
	e.now = func() time.Time { return time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC) }
	return e, &slept
}

// ============================================================================
// SelectTransport
// ============================================================================

func TestSelectTransportFirstWins(t *testing.T) {
	first := &mockTransport{kind: secondary.KindSerial}
	second := &mockTransport{kind: secondary.KindFile}

	got, err := SelectTransport([]secondary.Transport{first, second}, zap.NewNop())
	if err != nil {
		t.Fatalf("SelectTransport failed: %v", err)
	}
	if got != first {
		t.Error("first openable transport should win")
	}
	if second.opens != 0 {
		t.Error("later candidates must not be probed")
	}
}

func TestSelectTransportFallsThrough(t *testing.T) {
	broken := &mockTransport{kind: secondary.KindBluetooth, openErr: errors.New("no route to host")}
	alsoBroken := &mockTransport{kind: secondary.KindSerial, openErr: errors.New("no such device")}
	working := &mockTransport{kind: secondary.KindFile}

	got, err := SelectTransport([]secondary.Transport{broken, alsoBroken, working}, zap.NewNop())
	if err != nil {
		t.Fatalf("SelectTransport failed: %v", err)
	}
	if got != working {
		t.Error("selection should skip failing candidates in order")
	}
}

func TestSelectTransportAllFail(t *testing.T) {
	broken := &mockTransport{kind: secondary.KindSerial, openErr: errors.New("no such device")}

	_, err := SelectTransport([]secondary.Transport{broken}, zap.NewNop())
	if err == nil {
		t.Error("expected error when no candidate opens")
	}
}

// ============================================================================
// DeliveryEngine
// ============================================================================

func TestPrintMissionSuccess(t *testing.T) {
	transport := &mockTransport{kind: secondary.KindSerial}
	trigger := &mockTrigger{}
	engine, _ := testEngine(transport, trigger)

	ok := engine.PrintMission(context.Background(), testBriefing())
	if !ok {
		t.Fatal("print should succeed")
	}
	if trigger.fires != 1 {
		t.Errorf("trigger should fire once, fired %d times", trigger.fires)
	}
	if len(transport.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(transport.writes))
	}
	if !strings.Contains(transport.writes[0], "MISSION BRIEFING") {
		t.Error("briefing content not written")
	}
	if !strings.HasSuffix(transport.writes[0], "\n\n\n") {
		t.Error("feed lines missing before cut")
	}
	if transport.cuts != 1 {
		t.Error("paper should be cut")
	}
}

func TestPrintRetriesOnBusy(t *testing.T) {
	busy := errors.New("write /dev/rfcomm0: device or resource busy")
	transport := &mockTransport{
		kind:      secondary.KindSerial,
		writeErrs: []error{busy, busy, nil},
	}
	engine, slept := testEngine(transport, nil)

	ok := engine.PrintMission(context.Background(), testBriefing())
	if !ok {
		t.Fatal("print should succeed on the third attempt")
	}
	if len(transport.writes) != 3 {
		t.Errorf("expected 3 write attempts, got %d", len(transport.writes))
	}
	if len(*slept) != 2 {
		t.Errorf("expected 2 retry pauses, got %d", len(*slept))
	}
	for _, d := range *slept {
		if d != printRetryWait {
			t.Errorf("wrong retry pause: %v", d)
		}
	}
}

func TestPrintGivesUpAfterThreeBusyAttempts(t *testing.T) {
	busy := errors.New("open /dev/usb/lp0: errno 16")
	transport := &mockTransport{
		kind:      secondary.KindSerial,
		writeErrs: []error{busy, busy, busy},
	}
	engine, _ := testEngine(transport, nil)

	if engine.PrintMission(context.Background(), testBriefing()) {
		t.Fatal("print should fail after exhausting retries")
	}
	if len(transport.writes) != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", len(transport.writes))
	}
}

func TestPrintDoesNotRetryOtherErrors(t *testing.T) {
	transport := &mockTransport{
		kind:      secondary.KindSerial,
		writeErrs: []error{errors.New("input/output error")},
	}
	engine, slept := testEngine(transport, nil)

	if engine.PrintMission(context.Background(), testBriefing()) {
		t.Fatal("print should fail")
	}
	if len(transport.writes) != 1 {
		t.Errorf("non-busy errors must not be retried, got %d attempts", len(transport.writes))
	}
	if len(*slept) != 0 {
		t.Error("no retry pause expected")
	}
}

func TestPrintCutFailureWritesSeparator(t *testing.T) {
	transport := &mockTransport{
		kind:   secondary.KindFile,
		cutErr: errors.New("cut not supported"),
	}
	engine, _ := testEngine(transport, nil)

	if !engine.PrintMission(context.Background(), testBriefing()) {
		t.Fatal("cut failure should not fail the print")
	}
	last := transport.writes[len(transport.writes)-1]
	if !strings.Contains(last, "----") {
		t.Error("dashed separator should replace the cut")
	}
}

func TestPrintClosesSocketTransports(t *testing.T) {
	bt := &mockTransport{kind: secondary.KindBluetooth}
	engine, _ := testEngine(bt, nil)
	engine.PrintMission(context.Background(), testBriefing())
	if bt.closes != 1 {
		t.Errorf("bluetooth transport should close after print, closes=%d", bt.closes)
	}

	serial := &mockTransport{kind: secondary.KindSerial}
	engine, _ = testEngine(serial, nil)
	engine.PrintMission(context.Background(), testBriefing())
	if serial.closes != 0 {
		t.Errorf("serial handle should persist, closes=%d", serial.closes)
	}
}

func TestPrintTriggerFiresEvenWhenWriteFails(t *testing.T) {
	transport := &mockTransport{
		kind:      secondary.KindSerial,
		writeErrs: []error{errors.New("input/output error")},
	}
	trigger := &mockTrigger{}
	engine, _ := testEngine(transport, trigger)

	engine.PrintMission(context.Background(), testBriefing())
	if trigger.fires != 1 {
		t.Error("trigger fires on the attempt, not the outcome")
	}
}

func TestPrintReceipt(t *testing.T) {
	transport := &mockTransport{kind: secondary.KindFile}
	engine, _ := testEngine(transport, nil)

	ok := engine.PrintReceipt(context.Background(), &classify.Receipt{
		Sender:  "sam",
		Message: "Miss you, call me sometime!",
	})
	if !ok {
		t.Fatal("receipt print should succeed")
	}
	if !strings.Contains(transport.writes[0], "u/sam") {
		t.Error("receipt content not written")
	}
}

// ============================================================================
// IsBusyError
// ============================================================================

func TestIsBusyError(t *testing.T) {
	if !IsBusyError(errors.New("write: Device or resource busy")) {
		t.Error("busy text should match case-insensitively")
	}
	if !IsBusyError(errors.New("ioctl failed: errno 16")) {
		t.Error("errno 16 should count as busy")
	}
	if IsBusyError(errors.New("connection refused")) {
		t.Error("other errors are not busy")
	}
	if IsBusyError(nil) {
		t.Error("nil is not busy")
	}
}
