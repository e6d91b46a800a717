package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ThreeDotsLabs/watermill"
	wmhttp "github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const notifyTopic = "mmnotify.push"

// Dispatcher decouples webhook receipt from delivery in serve mode: handlers
// publish events onto an in-process bus, a single subscriber drains them to
// the Mattermost sink and any configured forwarders. Publishing blocks until
// the subscriber acks, so a Dispatch that returns nil has been delivered (or
// had its delivery failure logged and counted).
type Dispatcher struct {
	bus         *gochannel.GoChannel
	notifier    *Notifier
	webhookURL  string
	forwarder   message.Publisher
	forwardURLs []string
	logger      *log.Logger
}

func NewDispatcher(cfg ServeConfig, notifier *Notifier, logger *log.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	wmLogger := watermill.NewStdLogger(false, false)

	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, wmLogger)

	d := &Dispatcher{
		bus:         bus,
		notifier:    notifier,
		webhookURL:  cfg.Mattermost.WebhookURL,
		forwardURLs: cfg.Forwarders,
		logger:      logger,
	}

	if len(cfg.Forwarders) > 0 {
		pub, err := wmhttp.NewPublisher(wmhttp.PublisherConfig{
			MarshalMessageFunc: func(url string, msg *message.Message) (*http.Request, error) {
				return wmhttp.DefaultMarshalMessageFunc(url, msg)
			},
		}, wmLogger)
		if err != nil {
			return nil, err
		}
		d.forwarder = pub
	}

	return d, nil
}

// Start subscribes the delivery loop. It must be called before the first
// Dispatch.
func (d *Dispatcher) Start(ctx context.Context) error {
	messages, err := d.bus.Subscribe(ctx, notifyTopic)
	if err != nil {
		return err
	}
	go d.consume(ctx, messages)
	return nil
}

// Dispatch publishes an event context for delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, evctx *EventContext) error {
	payload, err := json.Marshal(evctx)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return d.bus.Publish(notifyTopic, msg)
}

func (d *Dispatcher) consume(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		var evctx EventContext
		if err := json.Unmarshal(msg.Payload, &evctx); err != nil {
			d.logger.Printf("decode event: %v", err)
			msg.Ack()
			continue
		}
		d.deliver(ctx, &evctx, msg.Payload)
		msg.Ack()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, evctx *EventContext, raw []byte) {
	if err := d.notifier.Send(ctx, d.webhookURL, FormatPush(evctx)); err != nil {
		IncDeliveryError("mattermost")
		d.logger.Printf("mattermost delivery failed: %v", err)
	} else {
		IncDelivery("mattermost")
	}

	for _, target := range d.forwardURLs {
		fwd := message.NewMessage(watermill.NewUUID(), raw)
		if err := d.forwarder.Publish(target, fwd); err != nil {
			IncDeliveryError("forwarder")
			d.logger.Printf("forward to %s failed: %v", target, err)
		} else {
			IncDelivery("forwarder")
		}
	}
}

func (d *Dispatcher) Close() error {
	err := d.bus.Close()
	if d.forwarder != nil {
		err = errors.Join(err, d.forwarder.Close())
	}
	return err
}
