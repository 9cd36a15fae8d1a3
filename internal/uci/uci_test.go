package uci

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonchess/talon/internal/board"
	"github.com/talonchess/talon/internal/engine"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func newTestUCI() *UCI {
	return New(engine.NewEngine(1))
}

func TestParseGoOptionsReadsDepthAndMoveTime(t *testing.T) {
	u := newTestUCI()
	opts := u.parseGoOptions(strings.Fields("depth 6 movetime 1500"))

	assert.Equal(t, 6, opts.Depth)
	assert.Equal(t, 1500*time.Millisecond, opts.MoveTime)
}

func TestParseGoOptionsReadsClockFields(t *testing.T) {
	u := newTestUCI()
	opts := u.parseGoOptions(strings.Fields("wtime 60000 btime 55000 winc 1000 binc 1000 movestogo 20"))

	assert.Equal(t, 60000*time.Millisecond, opts.WTime)
	assert.Equal(t, 55000*time.Millisecond, opts.BTime)
	assert.Equal(t, 1000*time.Millisecond, opts.WInc)
	assert.Equal(t, 1000*time.Millisecond, opts.BInc)
	assert.Equal(t, 20, opts.MovesToGo)
}

func TestParseGoOptionsReadsInfinite(t *testing.T) {
	u := newTestUCI()
	opts := u.parseGoOptions(strings.Fields("infinite"))

	assert.True(t, opts.Infinite)
}

func TestCalculateLimitsUsesFixedMoveTimeOverClock(t *testing.T) {
	u := newTestUCI()
	limits := u.calculateLimits(GoOptions{MoveTime: 2 * time.Second, WTime: 10 * time.Second})

	assert.Equal(t, 2*time.Second, limits.MoveTime)
	assert.Zero(t, limits.UCI.Time[board.White])
}

func TestCalculateLimitsBuildsUCILimitsFromClock(t *testing.T) {
	u := newTestUCI()
	limits := u.calculateLimits(GoOptions{WTime: 10 * time.Second, BTime: 8 * time.Second, MovesToGo: 30})

	assert.Zero(t, limits.MoveTime)
	assert.Equal(t, 10*time.Second, limits.UCI.Time[board.White])
	assert.Equal(t, 8*time.Second, limits.UCI.Time[board.Black])
	assert.Equal(t, 30, limits.UCI.MovesToGo)
}

func TestHandlePositionStartposWithMoves(t *testing.T) {
	u := newTestUCI()
	u.handlePosition(strings.Fields("startpos moves e2e4 e7e5"))

	expected := board.NewPosition()
	m1, err := board.ParseMove("e2e4", expected)
	require.NoError(t, err)
	expected.MakeMove(m1)
	m2, err := board.ParseMove("e7e5", expected)
	require.NoError(t, err)
	expected.MakeMove(m2)

	assert.Equal(t, expected.Hash, u.position.Hash)
	assert.Len(t, u.positionHashes, 3)
}

func TestHandlePositionFEN(t *testing.T) {
	u := newTestUCI()
	fen := "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
	u.handlePosition(append([]string{"fen"}, strings.Fields(fen)...))

	expected, err := board.ParseFEN(fen)
	require.NoError(t, err)
	assert.Equal(t, expected.Hash, u.position.Hash)
}

func TestHandleUCIPrintsIDAndOptions(t *testing.T) {
	u := newTestUCI()
	out := captureStdout(t, u.handleUCI)

	assert.Contains(t, out, "id name")
	assert.Contains(t, out, "option name Hash")
	assert.Contains(t, out, "uciok")
}

func TestSendInfoFormatsCentipawnScore(t *testing.T) {
	u := newTestUCI()
	out := captureStdout(t, func() {
		u.sendInfo(engine.SearchInfo{Depth: 5, Score: 37, Nodes: 1000, Time: 100 * time.Millisecond})
	})

	assert.Contains(t, out, "depth 5")
	assert.Contains(t, out, "score cp 37")
	assert.Contains(t, out, "nodes 1000")
}

func TestSendInfoFormatsMateScore(t *testing.T) {
	u := newTestUCI()
	out := captureStdout(t, func() {
		u.sendInfo(engine.SearchInfo{Depth: 3, Score: engine.MateScore - 1, Nodes: 10})
	})

	assert.Contains(t, out, "score mate 1")
}

func TestSendInfoIncludesPV(t *testing.T) {
	u := newTestUCI()
	pos := board.NewPosition()
	m, err := board.ParseMove("e2e4", pos)
	require.NoError(t, err)

	out := captureStdout(t, func() {
		u.sendInfo(engine.SearchInfo{Depth: 1, Score: 0, Nodes: 1, PV: []board.Move{m}})
	})

	assert.Contains(t, out, "pv e2e4")
}

func TestHandleSetOptionDebugTogglesBoardFlag(t *testing.T) {
	u := newTestUCI()
	u.handleSetOption(strings.Fields("name Debug value true"))
	assert.True(t, board.DebugMoveValidation)

	u.handleSetOption(strings.Fields("name Debug value false"))
	assert.False(t, board.DebugMoveValidation)
}

func TestHandleNewGameClearsPositionAndHistory(t *testing.T) {
	u := newTestUCI()
	u.handlePosition(strings.Fields("startpos moves e2e4"))
	require.NotEqual(t, board.NewPosition().Hash, u.position.Hash)

	u.handleNewGame()

	assert.Equal(t, board.NewPosition().Hash, u.position.Hash)
	assert.Len(t, u.positionHashes, 1)
}

func TestHandlePerftReportsNodeCount(t *testing.T) {
	u := newTestUCI()
	out := captureStdout(t, func() {
		u.handlePerft([]string{"2"})
	})

	assert.Contains(t, out, "Nodes: 400")
}
