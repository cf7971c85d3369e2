package amqp

import (
	"fmt"
	"net/url"

	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/engines/eventbus"
	"github.com/sirupsen/logrus"
)

type AMQPConnection struct {
	Protocol  string          `mapstructure:"protocol"`
	Hostname  string          `mapstructure:"hostname"`
	Port      int             `mapstructure:"port"`
	Exchange  string          `mapstructure:"exchange"`
	BasicAuth BasicAuthConfig `mapstructure:"basic_auth"`
}

type BasicAuthConfig struct {
	Enabled  bool            `mapstructure:"enabled"`
	Username string          `mapstructure:"username"`
	Password config.Password `mapstructure:"password"`
}

func Register() {
	eventbus.RegisterEventBusEngine("amqp", func(eventBusProvider string, conf interface{}, serviceID string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
		return NewAmqpEngine(conf, serviceID, logger)
	})
}

type AmqpEngine struct {
	logger     *logrus.Entry
	config     AMQPConnection
	serviceID  string
	subscriber message.Subscriber
	publisher  message.Publisher
}

func NewAmqpEngine(conf interface{}, serviceID string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
	localConf, err := config.DecodeStruct[AMQPConnection](conf)
	if err != nil {
		logger.Errorf("could not decode AMQP connection config: %s", err)
		return nil, err
	}
	return &AmqpEngine{
		logger:    logger,
		config:    localConf,
		serviceID: serviceID,
	}, nil
}

func (e *AmqpEngine) Subscriber() (message.Subscriber, error) {
	if e.subscriber == nil {
		subscriber, err := newAMQPSub(e.config, e.serviceID, e.logger)
		if err != nil {
			e.logger.Errorf("could not generate Event Bus Subscriber: %s", err)
			return nil, err
		}
		e.subscriber = subscriber
	}
	return e.subscriber, nil
}

func (e *AmqpEngine) Publisher() (message.Publisher, error) {
	if e.publisher == nil {
		publisher, err := newAMQPPub(e.config, e.serviceID, e.logger)
		if err != nil {
			e.logger.Errorf("could not generate Event Bus Publisher: %s", err)
			return nil, err
		}
		e.publisher = publisher
	}
	return e.publisher, nil
}

func amqpConfig(conf AMQPConnection, serviceID string, logger *logrus.Entry) amqp.Config {
	userPassUrlPrefix := ""
	if conf.BasicAuth.Enabled {
		logger.Debugf("basic auth enabled")
		userPassUrlPrefix = fmt.Sprintf("%s:%s@", url.PathEscape(conf.BasicAuth.Username), url.PathEscape(string(conf.BasicAuth.Password)))
	}

	amqpURL := fmt.Sprintf("%s://%s%s:%d", conf.Protocol, userPassUrlPrefix, conf.Hostname, conf.Port)

	amqpConfig := amqp.NewDurablePubSubConfig(amqpURL, amqp.GenerateQueueNameTopicNameWithSuffix(serviceID))
	amqpConfig.Exchange = amqp.ExchangeConfig{
		GenerateName: func(topic string) string {
			if conf.Exchange != "" {
				return conf.Exchange
			}
			return "iotflow-events"
		},
		Type:    "topic",
		Durable: true,
	}
	amqpConfig.Publish = amqp.PublishConfig{
		GenerateRoutingKey: func(topic string) string {
			return topic
		},
	}

	return amqpConfig
}

func newAMQPPub(conf AMQPConnection, serviceID string, logger *logrus.Entry) (message.Publisher, error) {
	lEventBusPub := eventbus.NewLoggerAdapter(logger.WithField("subsystem-provider", "AMQP - Publisher"))

	publisher, err := amqp.NewPublisher(amqpConfig(conf, serviceID, logger), lEventBusPub)
	if err != nil {
		return nil, fmt.Errorf("could not create publisher: %s", err)
	}

	return publisher, nil
}

func newAMQPSub(conf AMQPConnection, serviceID string, logger *logrus.Entry) (message.Subscriber, error) {
	lEventBusSub := eventbus.NewLoggerAdapter(logger.WithField("subsystem-provider", "AMQP - Subscriber"))

	subscriber, err := amqp.NewSubscriber(amqpConfig(conf, serviceID, logger), lEventBusSub)
	if err != nil {
		return nil, fmt.Errorf("could not create subscriber: %s", err)
	}

	return subscriber, nil
}
