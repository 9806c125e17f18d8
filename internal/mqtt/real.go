package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/config"
	"github.com/oshokin/cstation/internal/domain/station"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	retryInterval  = 5 * time.Second
	// disconnectQuiesce is how long Close waits for in-flight work, in ms.
	disconnectQuiesce = 1000
)

var (
	errConnectTimeout = errors.New("connection timeout")
	errPublishTimeout = errors.New("publish timeout")
)

// Client is a Publisher backed by a real broker that also forwards lux
// readings to a handler.
type Client struct {
	client paho.Client
	prefix string
	ind    ConnectionIndicator
	log    *zap.SugaredLogger
}

// Connect dials the broker. The lux subscription is renewed on every
// (re)connect; onLux and ind may be nil.
func Connect(cfg config.MQTT, onLux LuxHandler, ind ConnectionIndicator, log *zap.SugaredLogger) (*Client, error) {
	c := &Client{
		prefix: cfg.TopicPrefix,
		ind:    ind,
		log:    log,
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetWill(Topic(c.prefix, TopicSystem), SystemOffline, 1, true).
		SetOnConnectHandler(func(client paho.Client) {
			c.onConnect(client, onLux)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.connectionLost(err)
		})

	c.client = paho.NewClient(opts)
	c.showConnect(ConnectLevelConnecting)

	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errConnectTimeout
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

func (c *Client) onConnect(client paho.Client, onLux LuxHandler) {
	c.connected()

	client.Publish(Topic(c.prefix, TopicSystem), 1, true, SystemOnline)

	if onLux == nil {
		return
	}

	client.Subscribe(Topic(c.prefix, TopicLux), 0, func(_ paho.Client, msg paho.Message) {
		lux, err := ParseLux(msg.Payload())
		if err != nil {
			c.log.Debugw("lux reading dropped", "payload", string(msg.Payload()), "error", err)

			return
		}

		onLux(lux)
	})
}

func (c *Client) connected() {
	c.log.Infow("mqtt connected", "prefix", c.prefix)
	c.showConnect(ConnectLevelUp)
}

func (c *Client) connectionLost(err error) {
	c.log.Warnw("mqtt connection lost", "error", err)
	c.showConnect(ConnectLevelConnecting)
}

func (c *Client) showConnect(level int) {
	if c.ind != nil {
		c.ind.ConnectState(level)
	}
}

// PublishStatus sends a retained snapshot.
func (c *Client) PublishStatus(s station.Snapshot) error {
	payload, err := FormatStatus(s)
	if err != nil {
		return err
	}

	token := c.client.Publish(Topic(c.prefix, TopicStatus), 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errPublishTimeout
	}

	if err = token.Error(); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}

	return nil
}

// Close marks the station offline and disconnects.
func (c *Client) Close() error {
	token := c.client.Publish(Topic(c.prefix, TopicSystem), 1, true, SystemOffline)
	token.WaitTimeout(publishTimeout)

	c.client.Disconnect(disconnectQuiesce)

	return nil
}
