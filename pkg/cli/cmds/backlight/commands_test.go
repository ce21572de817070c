package backlight

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/keylight/pkg/led"
)

func TestPayloads(t *testing.T) {
	red := led.RGB(0xff, 0, 0)
	require.Equal(t, []byte{1, 2, 0, 0, 0xff, 0xff}, KeyPayload(1, 2, red))
	require.Equal(t, []byte{3, 0, 0, 0xff, 0xff, 0xff, 0, 0, 0xff},
		RowPayload(3, []led.Color{red, led.RGB(0, 0, 0xff)}))
	require.Equal(t, []byte{1, 2, 0, 0, 0xff, 0xff, 3, 20}, BlinkPayload(1, 2, red, 3, 20))
}

func TestProfileIndex(t *testing.T) {
	names := []string{"solid", "rainbow", "breathe"}
	tests := []struct {
		arg   string
		index int
		ok    bool
	}{
		{"2", 2, true},
		{"rainbow", 1, true},
		{"3", 0, false},
		{"-1", 0, false},
		{"fire", 0, false},
	}
	for _, test := range tests {
		n, err := ProfileIndex(test.arg, names)
		if !test.ok {
			require.Error(t, err, test.arg)
			continue
		}
		require.NoError(t, err, test.arg)
		require.Equal(t, test.index, n, test.arg)
	}
}

func TestLayers(t *testing.T) {
	for name, codes := range Layers {
		cmds := layerCmds(name, codes)
		require.Len(t, cmds, 3)
		require.Equal(t, name+".key", cmds[0].Name)
	}
}
