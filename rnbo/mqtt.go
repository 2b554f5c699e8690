package rnbo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/peragwin/vuzicscene/control"
)

// MQTTLink talks to a runner through a broker. Messages arrive on
// <prefix>/messages/<tag>, parameters on <prefix>/params/<name> and
// requests are published to <prefix>/<type>.
type MQTTLink struct {
	client mqtt.Client
	prefix string
	msgs   chan control.Message
	params chan control.ParamChange
}

// DialMQTT connects to broker and subscribes to the runner's topics.
func DialMQTT(ctx context.Context, broker, prefix string) (*MQTTLink, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("visualizer-%s-%d", hostname, os.Getpid()))
	client := mqtt.NewClient(opts)

	glog.Infof("connecting to mqtt broker %s", broker)
	if err := wait(ctx, client.Connect()); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	l := &MQTTLink{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		msgs:   make(chan control.Message, 64),
		params: make(chan control.ParamChange, 64),
	}
	if err := wait(ctx, client.Subscribe(l.prefix+"/messages/+", 0, l.onMessage)); err != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribing: %w", err)
	}
	if err := wait(ctx, client.Subscribe(l.prefix+"/params/+", 0, l.onParam)); err != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribing: %w", err)
	}
	return l, nil
}

func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func lastSegment(topic string) string {
	return topic[strings.LastIndex(topic, "/")+1:]
}

func (l *MQTTLink) onMessage(_ mqtt.Client, m mqtt.Message) {
	v, err := parseScalar(m.Payload())
	if err != nil {
		glog.Warningf("%s: %v", m.Topic(), err)
		return
	}
	select {
	case l.msgs <- control.Message{Tag: lastSegment(m.Topic()), Payload: v}:
	default:
		glog.Warning("message buffer full, dropping ", m.Topic())
	}
}

func (l *MQTTLink) onParam(_ mqtt.Client, m mqtt.Message) {
	v, err := parseScalar(m.Payload())
	if err != nil {
		glog.Warningf("%s: %v", m.Topic(), err)
		return
	}
	select {
	case l.params <- control.ParamChange{Name: lastSegment(m.Topic()), Value: v}:
	default:
		glog.Warning("parameter buffer full, dropping ", m.Topic())
	}
}

// Request implements Link. The broker only confirms delivery, not that
// the runner accepted the request.
func (l *MQTTLink) Request(ctx context.Context, req *Request) error {
	bs, err := json.Marshal(req)
	if err != nil {
		return err
	}
	token := l.client.Publish(l.prefix+"/"+req.Type, 1, false, bs)
	if err := wait(ctx, token); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

// Messages implements Link.
func (l *MQTTLink) Messages() <-chan control.Message { return l.msgs }

// Params implements Link.
func (l *MQTTLink) Params() <-chan control.ParamChange { return l.params }

// Close implements Link.
func (l *MQTTLink) Close() error {
	l.client.Disconnect(250)
	return nil
}
