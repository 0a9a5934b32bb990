package channels

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// fakeToken is an immediately-resolved mqtt.Token carrying a fixed error.
type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	done := make(chan struct{})
	close(done)
	return &fakeToken{err: err, done: done}
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

// fakeMQTTClient records publishes without a broker.
type fakeMQTTClient struct {
	connected   bool
	connectErr  error
	publishErr  error
	lastTopic   string
	lastQoS     byte
	lastPayload []byte
}

func newFakeMQTTClient() *fakeMQTTClient {
	return &fakeMQTTClient{}
}

func (f *fakeMQTTClient) Connect() mqtt.Token {
	if f.connectErr == nil {
		f.connected = true
	}
	return newFakeToken(f.connectErr)
}

func (f *fakeMQTTClient) Disconnect(quiesce uint) {
	f.connected = false
}

func (f *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.lastTopic = topic
	f.lastQoS = qos
	if b, ok := payload.([]byte); ok {
		f.lastPayload = b
	}
	return newFakeToken(f.publishErr)
}

func (f *fakeMQTTClient) IsConnected() bool {
	return f.connected
}
