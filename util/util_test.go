package util

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveJson(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a", "b", "out.json")
	require.NoError(t, SaveJson(file, map[string]int{"x": 1}))

	bs, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x": 1}`, string(bs))

	assert.Error(t, SaveJson(filepath.Join(t.TempDir(), "bad.json"), make(chan int)))
}

func TestCopies(t *testing.T) {
	ints := []int{1, 2}
	c := CopyIntSlice(ints)
	c[0] = 5
	assert.Equal(t, 1, ints[0])
	assert.Equal(t, []float64{1.5}, CopyFloatSlice([]float64{1.5}))
	assert.Equal(t, []bool{true}, CopyBoolSlice([]bool{true}))
	assert.Equal(t, 2, MinInt(2, 3))
}

func TestTerminalPrinter(t *testing.T) {
	out := new(bytes.Buffer)
	printer := NewTerminalPrinter(out, time.Millisecond)
	frame := printer.NewFrame()
	printer.Start(context.Background())

	frame.Set("hello\n")
	frame.Set("world\n")
	assert.Equal(t, "world\n", frame.Get())
	printer.Stop()

	assert.Contains(t, out.String(), "world")
}
