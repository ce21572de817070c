// Package bridge exposes a controller on MQTT. Status replies are
// published as StatusEvent messages on <id>/status and commands are
// accepted on <id>/cmd/<command-name> with the raw payload.
package bridge

import (
	"context"
	"fmt"
	"path"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/keylight/pkg/command"
	"github.com/robotalks/keylight/pkg/l1/mqtt"
)

// Dispatcher executes commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, code command.Code, payload []byte) error
}

// Publisher publishes messages on topics relative to the queue prefix.
type Publisher interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Bridge connects a Dispatcher to MQTT. It implements
// command.StatusListener.
type Bridge struct {
	ID         string
	Queue      *mqtt.Queue
	Dispatcher Dispatcher
	Profiles   []string

	pub Publisher
}

// New creates a Bridge over a Queue.
func New(queue *mqtt.Queue, id string, d Dispatcher, profiles []string) *Bridge {
	return &Bridge{
		ID:         id,
		Queue:      queue,
		Dispatcher: d,
		Profiles:   profiles,
		pub:        queue,
	}
}

// NewFromURL creates a Bridge connecting to brokerURL. The online topic is
// cleared by the broker when the connection drops.
func NewFromURL(brokerURL, id string, d Dispatcher, profiles []string) (*Bridge, error) {
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %v", err)
	}
	opts.SetBinaryWill(topicPrefix+id+"/online", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("keylight:" + id)
	}
	return New(mqtt.NewQueue(opts, topicPrefix), id, d, profiles), nil
}

// StatusTopic is where status events are published.
func (b *Bridge) StatusTopic() string {
	return b.ID + "/status"
}

// CommandTopic is the pattern of command topics.
func (b *Bridge) CommandTopic() string {
	return b.ID + "/cmd/+"
}

// StatusChanged implements command.StatusListener. It does not wait for
// the broker.
func (b *Bridge) StatusChanged(s command.StatusReport) {
	data, err := proto.Marshal(NewStatusEvent(b.ID, s, b.Profiles))
	if err != nil {
		glog.Errorf("encode status: %v", err)
		return
	}
	b.pub.PubWith(b.StatusTopic(), data, 0, true)
}

// HandleCommand implements mqtt.Handler.
func (b *Bridge) HandleCommand(topic string, payload []byte) {
	name := path.Base(topic)
	code, ok := command.ParseCode(name)
	if !ok || code == command.Status || code == command.Debug {
		glog.Warningf("MQTT command %q ignored", name)
		return
	}
	if err := b.Dispatcher.Dispatch(context.Background(), code, payload); err != nil {
		glog.V(2).Infof("MQTT command %s dropped: %v", code, err)
	}
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.Queue.Sub(b.CommandTopic(), b.HandleCommand)
	defer sub.Close()
	b.Queue.OnConnect = func(q *mqtt.Queue) {
		q.PubWith(b.ID+"/online", []byte("1"), 1, true)
	}
	if token := b.Queue.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %v", token.Error())
	}
	<-ctx.Done()
	b.Queue.PubWith(b.ID+"/online", nil, 1, true).Wait()
	b.Queue.Close()
	return nil
}
