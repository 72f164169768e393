package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

var (
	instance evbus.Bus
	once     sync.Once
)

// Get returns the process-wide event bus instance.
func Get() evbus.Bus {
	once.Do(func() {
		instance = evbus.New()
	})
	return instance
}

// Publish publishes a synchronous event.
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// Subscribe subscribes a handler to a topic.
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// SubscribeAsync subscribes a handler that runs on its own goroutine.
func SubscribeAsync(topic string, fn interface{}) error {
	return Get().SubscribeAsync(topic, fn, false)
}

// Shutdown waits for all in-flight async handlers to finish.
func Shutdown() {
	if instance != nil {
		instance.WaitAsync()
	}
}
