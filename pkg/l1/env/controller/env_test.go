package controller

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/keylight/pkg/command"
	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/matrix"
)

type testLink struct {
	lock   sync.Mutex
	sent   []command.Code
	errors uint8
}

func (l *testLink) Send(cmd byte, payload []byte, retries int) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.sent = append(l.sent, command.Code(cmd))
	return nil
}

func (l *testLink) Inc()          { l.errors++ }
func (l *testLink) Errors() uint8 { return l.errors }

func (l *testLink) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func testHardware(t *testing.T, conf *Config) Hardware {
	layout, err := conf.LoadLayout()
	require.NoError(t, err)
	return Hardware{Layout: layout, GPIO: hal.NewVirtualGPIOFor(layout), Timer: &hal.StepTimer{}}
}

func TestLoadLayout(t *testing.T) {
	conf := NewConfig()
	conf.Rows, conf.Columns = 2, 3
	layout, err := conf.LoadLayout()
	require.NoError(t, err)
	require.Len(t, layout.Columns, 3)
	require.Len(t, layout.Rows, 2)

	fn := filepath.Join(t.TempDir(), "board.yaml")
	data, err := hal.DefaultLayout(1, 2).Encode()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fn, data, 0644))
	conf.BoardFile = fn
	layout, err = conf.LoadLayout()
	require.NoError(t, err)
	require.Len(t, layout.Columns, 2)

	conf.BoardFile = fn + ".missing"
	_, err = conf.LoadLayout()
	require.Error(t, err)
}

func TestNewEnv(t *testing.T) {
	conf := NewConfig()
	conf.MQTTBrokerURL = ""
	link := &testLink{}
	e, err := conf.NewEnv(testHardware(t, conf), link)
	require.NoError(t, err)
	require.Nil(t, e.Bridge)
	require.Len(t, e.Runnables(), 1)

	require.NoError(t, e.Start())
	require.True(t, e.Controller.Powered())
	require.NoError(t, e.Dispatch(context.Background(), command.NextProfile, nil))
	require.Equal(t, 1, e.Controller.Scheduler().Index())
	require.Equal(t, []command.Code{command.Status}, link.sent)

	require.Error(t, e.Dispatch(context.Background(), command.Code(0x7f), nil))
	require.Equal(t, uint8(1), link.Errors())

	require.NoError(t, e.Close())
	require.False(t, e.Controller.Powered())
}

func TestNewEnvWithBridge(t *testing.T) {
	conf := NewConfig()
	conf.ID = "kb0"
	conf.MQTTBrokerURL = "mqtt://localhost:1883/keylight"
	conf.PowerOn = false
	e, err := conf.NewEnv(testHardware(t, conf), &testLink{})
	require.NoError(t, err)
	require.NotNil(t, e.Bridge)
	require.Equal(t, "kb0/status", e.Bridge.StatusTopic())
	require.Equal(t, "keylight/", e.Bridge.Queue.TopicPrefix)
	require.Len(t, e.Runnables(), 2)

	require.NoError(t, e.Start())
	require.False(t, e.Controller.Powered())
}

func TestEnvRun(t *testing.T) {
	conf := NewConfig()
	conf.MQTTBrokerURL = ""
	e, err := conf.NewEnv(testHardware(t, conf), &testLink{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))
	require.False(t, e.Controller.Powered())
}

func TestNewEnvPWMOptions(t *testing.T) {
	conf := NewConfig()
	conf.MQTTBrokerURL = ""
	conf.ResolutionShift = 0
	e, err := conf.NewEnv(testHardware(t, conf), &testLink{})
	require.NoError(t, err)
	require.Zero(t, e.Controller.Engine().ResolutionShift())

	tests := []struct {
		limit, shift uint
	}{
		{65536, matrix.DefaultResolutionShift},
		{matrix.DefaultLimit, matrix.MaxResolutionShift + 1},
	}
	for _, test := range tests {
		conf := NewConfig()
		conf.MQTTBrokerURL = ""
		conf.Limit, conf.ResolutionShift = test.limit, test.shift
		_, err := conf.NewEnv(testHardware(t, conf), &testLink{})
		require.Error(t, err, "limit %d shift %d", test.limit, test.shift)
	}

	conf = NewConfig()
	conf.MQTTBrokerURL = ""
	conf.Limit = math.MaxUint16
	e, err = conf.NewEnv(testHardware(t, conf), &testLink{})
	require.NoError(t, err)
	require.Equal(t, uint16(math.MaxUint16), e.Controller.Engine().Limit())
}
